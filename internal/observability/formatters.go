// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cover-letter/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewLines caps how much posting text is shown
	previewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if utf8.RuneCountInString(line) > inner {
			runes := []rune(line)
			line = string(runes[:inner-3]) + "..."
		}
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

// PrintRetrieval outputs where the posting came from and a preview of the cleaned text.
func (p *Printer) PrintRetrieval(attempt *types.RetrievalAttempt, posting types.CleanedPosting) {
	var sb strings.Builder
	if attempt != nil {
		sb.WriteString(fmt.Sprintf("Attempt:  %d\n", attempt.AttemptNumber))
		sb.WriteString(fmt.Sprintf("URL:      %s\n", attempt.FinalURL))
	}
	sb.WriteString(fmt.Sprintf("Chars:    %d\n", utf8.RuneCountInString(posting.Text)))

	if !posting.IsEmpty() {
		sb.WriteString("\n")
		lines := strings.Split(posting.Text, "\n")
		count := min(len(lines), previewLines)
		sb.WriteString(strings.Join(lines[:count], "\n"))
		if len(lines) > previewLines {
			sb.WriteString(fmt.Sprintf("\n... and %d more lines", len(lines)-previewLines))
		}
	}

	p.printBox("RETRIEVED POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtraction outputs the extracted job details.
func (p *Printer) PrintExtraction(result types.ExtractionResult) {
	if result.IsNotFound() {
		p.printBox("EXTRACTED JOB DETAILS", "No company or position found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", result.CompanyName))
	sb.WriteString(fmt.Sprintf("Position: %s\n", result.PositionName))
	if result.Requirements != "" {
		sb.WriteString("\nRequirements:\n")
		sb.WriteString(wrap(result.Requirements, boxWidth-6))
	}

	p.printBox("EXTRACTED JOB DETAILS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNarrative outputs the generated closing sentence and values paragraph.
func (p *Printer) PrintNarrative(bundle types.NarrativeBundle) {
	var sb strings.Builder
	sb.WriteString("Closing sentence:\n")
	sb.WriteString(wrap(bundle.ClosingSentence, boxWidth-6))
	sb.WriteString("\n\nValues paragraph:\n")
	sb.WriteString(wrap(bundle.ValuesParagraph, boxWidth-6))

	p.printBox("GENERATED NARRATIVE", sb.String())
}

// PrintOutput lists the files written for the run.
func (p *Printer) PrintOutput(paths ...string) {
	if len(paths) == 0 {
		return
	}
	p.printBox("OUTPUT FILES", strings.Join(paths, "\n"))
}
