package rendering

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/jonathan/cover-letter/internal/types"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// Format selects the letter output format.
type Format string

const (
	// FormatText renders a plain-text letter
	FormatText Format = "text"
	// FormatLaTeX renders a LaTeX letter with escaped values
	FormatLaTeX Format = "latex"
	// FormatPDF renders the plain-text letter onto an A4 PDF page
	FormatPDF Format = "pdf"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText, "txt", "":
		return FormatText, nil
	case FormatLaTeX, "tex":
		return FormatLaTeX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected text, latex or pdf)", value)
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatLaTeX:
		return "tex"
	case FormatPDF:
		return "pdf"
	default:
		return "txt"
	}
}

// RenderLetter executes the plain-text template at templatePath, or the built-in
// template when templatePath is empty. Missing context keys are template errors.
func RenderLetter(templatePath string, ctx types.LetterContext) (string, error) {
	return render(FormatText, templatePath, ctx)
}

// WriteLetter renders the letter in format and writes it to outDir under the
// dated output file name. It returns the written path.
func WriteLetter(outDir string, format Format, templatePath string, details types.ExtractionResult, ctx types.LetterContext, now time.Time) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", &RenderError{Path: outDir, Message: "failed to create output directory", Cause: err}
	}
	path := filepath.Join(outDir, OutputFileName(details, now, format.Extension()))

	switch format {
	case FormatPDF:
		text, err := RenderLetter(templatePath, ctx)
		if err != nil {
			return "", err
		}
		if err := WritePDF(path, text); err != nil {
			return "", err
		}
	default:
		content, err := render(format, templatePath, ctx)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", &RenderError{Path: path, Message: "failed to write", Cause: err}
		}
	}

	return path, nil
}

func render(format Format, templatePath string, ctx types.LetterContext) (string, error) {
	tmpl, err := parseTemplate(format, templatePath)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, map[string]string(ctx)); err != nil {
		return "", &TemplateError{
			Template: templateName(templatePath),
			Message:  "failed to execute template",
			Cause:    err,
		}
	}
	return result.String(), nil
}

// parseTemplate reads templatePath, falling back to the embedded template for format.
func parseTemplate(format Format, templatePath string) (*template.Template, error) {
	var content []byte
	var err error
	if templatePath == "" {
		content, err = defaultTemplates.ReadFile("templates/letter." + format.Extension() + ".tmpl")
	} else {
		content, err = os.ReadFile(templatePath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{Template: templateName(templatePath), Message: "template file not found", Cause: err}
		}
		return nil, &TemplateError{Template: templateName(templatePath), Message: "failed to read template file", Cause: err}
	}

	tmpl, err := template.New("letter").
		Option("missingkey=error").
		Funcs(template.FuncMap{"escape": EscapeLaTeX}).
		Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Template: templateName(templatePath),
			Message:  "failed to parse template",
			Cause:    err,
		}
	}

	return tmpl, nil
}
