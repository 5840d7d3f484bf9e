package rendering

import (
	"bytes"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

// RenderPDF lays text out on A4 pages, one paragraph per line, and returns the PDF bytes.
func RenderPDF(text string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()
	pdf.SetFont("Times", "", 12)

	// Core fonts are cp1252; translate typographic quotes and accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Message: "failed to generate PDF output", Cause: err}
	}
	return buf.Bytes(), nil
}

// WritePDF renders text as a PDF at path.
func WritePDF(path, text string) error {
	data, err := RenderPDF(text)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &RenderError{Path: path, Message: "failed to write", Cause: err}
	}
	return nil
}
