package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cover-letter/internal/types"
)

func TestPrintBox_AlignsLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "short\n"+strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	wrapped := wrap("I am drawn by a culture of careful engineering and shared ownership", 20)

	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 20)
	}
	assert.Equal(t, "I am drawn by a culture of careful engineering and shared ownership", strings.ReplaceAll(wrapped, "\n", " "))
	assert.Equal(t, "", wrap("   ", 10))
}

func TestPrintExtraction(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExtraction(types.ExtractionResult{CompanyName: "Acme", PositionName: "Software Engineer", Requirements: "Go, SQL"})

	output := buf.String()
	assert.Contains(t, output, "EXTRACTED JOB DETAILS")
	assert.Contains(t, output, "Company:  Acme")
	assert.Contains(t, output, "Position: Software Engineer")
	assert.Contains(t, output, "Go, SQL")
}

func TestPrintExtraction_NotFound(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintExtraction(types.ExtractionResult{})
	assert.Contains(t, buf.String(), "No company or position found")
}

func TestPrintNarrative(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintNarrative(types.NarrativeBundle{
		ClosingSentence: "I am eager to leverage Go.",
		ValuesParagraph: "I am drawn by craft.",
	})

	output := buf.String()
	assert.Contains(t, output, "GENERATED NARRATIVE")
	assert.Contains(t, output, "I am eager to leverage Go.")
	assert.Contains(t, output, "I am drawn by craft.")
}

func TestPrintRetrieval(t *testing.T) {
	var buf bytes.Buffer
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "line"
	}

	NewPrinter(&buf).PrintRetrieval(
		&types.RetrievalAttempt{AttemptNumber: 2, FinalURL: "https://example.com/jobs/1"},
		types.CleanedPosting{Text: strings.Join(lines, "\n")},
	)

	output := buf.String()
	assert.Contains(t, output, "Attempt:  2")
	assert.Contains(t, output, "https://example.com/jobs/1")
	assert.Contains(t, output, "... and 4 more lines")
}

func TestPrintOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutput()
	assert.Empty(t, buf.String())

	p.PrintOutput("out/Acme Software Engineer 2025-03-07.txt")
	assert.Contains(t, buf.String(), "OUTPUT FILES")
}
