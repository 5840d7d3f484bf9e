package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jonathan/cover-letter/internal/types"
)

// Metadata describes where a cleaned posting came from
type Metadata struct {
	URL       string `json:"url,omitempty"`
	FinalURL  string `json:"final_url,omitempty"` // Where the browser ended up
	Platform  string `json:"platform,omitempty"`  // Detected job board platform
	Attempt   int    `json:"attempt,omitempty"`   // Retrieval attempt that produced the text
	Timestamp string `json:"timestamp"`           // RFC3339 format
	Hash      string `json:"hash"`                // SHA256 hex digest of the cleaned text
	Chars     int    `json:"chars"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     utf8.RuneCountInString(content),
	}
}

// FromAttempt builds metadata for a posting cleaned from a retrieval attempt.
func FromAttempt(posting types.CleanedPosting, requestURL, platform string, attempt *types.RetrievalAttempt) *Metadata {
	meta := NewMetadata(posting.Text, requestURL)
	meta.Platform = platform
	if attempt != nil {
		meta.FinalURL = attempt.FinalURL
		meta.Attempt = attempt.AttemptNumber
	}
	return meta
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
