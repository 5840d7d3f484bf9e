// Package types provides type definitions for structured data used throughout the cover-letter system.
package types

import "strings"

// MaxPostingChars is the hard cap on cleaned posting text, in characters.
const MaxPostingChars = 6000

// PostingRequest identifies the job posting to process.
// Construct it with fetch.NewPostingRequest so the URL is validated.
type PostingRequest struct {
	URL string `json:"url"`
}

// RetrievalAttempt is the raw output of one browser attempt.
type RetrievalAttempt struct {
	AttemptNumber int    `json:"attempt_number"`
	FinalURL      string `json:"final_url"`
	RawBodyText   string `json:"raw_body_text"`
	ListItemText  string `json:"list_item_text,omitempty"`
}

// CleanedPosting is normalized posting text ready to embed in a prompt.
type CleanedPosting struct {
	Text string `json:"text"`
}

// IsEmpty reports whether the posting carries no text.
func (p CleanedPosting) IsEmpty() bool {
	return strings.TrimSpace(p.Text) == ""
}

// ExtractionResult holds the facts derived from a posting.
// The zero value is the "not found" sentinel.
type ExtractionResult struct {
	CompanyName  string `json:"company_name"`
	PositionName string `json:"position_name"`
	Requirements string `json:"requirements"`
}

// Valid reports whether both company and position are present after trimming.
func (r ExtractionResult) Valid() bool {
	return strings.TrimSpace(r.CompanyName) != "" && strings.TrimSpace(r.PositionName) != ""
}

// IsNotFound reports whether r is the "not found" sentinel.
func (r ExtractionResult) IsNotFound() bool {
	return r == ExtractionResult{}
}

// CompanyPossessive returns the possessive form of the company name ("Acme's", "Siemens’").
func (r ExtractionResult) CompanyPossessive() string {
	if strings.HasSuffix(r.CompanyName, "s") {
		return r.CompanyName + "’"
	}
	return r.CompanyName + "'s"
}

// NarrativeBundle holds the two generated letter fragments.
type NarrativeBundle struct {
	ClosingSentence string `json:"closing_sentence"`
	ValuesParagraph string `json:"values_paragraph"`
}

// LetterContext is the flat key-value context handed to the letter template.
type LetterContext map[string]string
