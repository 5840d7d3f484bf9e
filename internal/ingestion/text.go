// Package ingestion turns raw page text into a bounded, normalized posting.
package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cover-letter/internal/types"
)

// ListItemsLabel introduces the list-item block appended to the body text.
const ListItemsLabel = "Important Items, could potentially be technical skills:"

// Clean normalizes the body text and list-item text into a CleanedPosting.
// Lines are trimmed, blank lines dropped, the list block is appended under
// ListItemsLabel when present, and the result is cut to types.MaxPostingChars runes.
func Clean(rawBody, listItems string) types.CleanedPosting {
	body := cleanLines(rawBody)
	items := cleanLines(listItems)

	text := body
	if items != "" {
		if text != "" {
			text += "\n"
		}
		text += ListItemsLabel + "\n" + items
	}

	return types.CleanedPosting{Text: truncateRunes(text, types.MaxPostingChars)}
}

// cleanLines trims every line and drops the blank ones.
func cleanLines(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// truncateRunes returns the first limit characters of s without splitting a rune.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// IngestFromFile reads a pasted posting from disk and cleans it.
func IngestFromFile(path string) (types.CleanedPosting, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.CleanedPosting{}, nil, fmt.Errorf("file not found: %w", err)
		}
		return types.CleanedPosting{}, nil, fmt.Errorf("failed to read file: %w", err)
	}

	posting := Clean(string(content), "")
	return posting, NewMetadata(posting.Text, ""), nil
}

// WriteOutput writes the cleaned posting and its metadata to outDir.
func WriteOutput(outDir string, posting types.CleanedPosting, metadata *Metadata) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, "job_posting.cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(posting.Text), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaPath := filepath.Join(outDir, "job_posting.meta.json")
	metaJSON, err := metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
