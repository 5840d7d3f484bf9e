// Package rendering merges generated fragments into the cover letter template
// and writes the letter as text, LaTeX or PDF.
package rendering

import (
	"fmt"
	"strings"
)

// TemplateError is returned when a letter template cannot be read, parsed or executed.
// Template is the template path, or "built-in" for the embedded default.
type TemplateError struct {
	Template string
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	var sb strings.Builder
	sb.WriteString("template error")
	if e.Template != "" {
		sb.WriteString(" (" + e.Template + ")")
	}
	sb.WriteString(": " + e.Message)
	if e.Cause != nil {
		sb.WriteString(": " + e.Cause.Error())
	}
	return sb.String()
}

func (e *TemplateError) Unwrap() error { return e.Cause }

// RenderError is returned when a rendered letter cannot be produced or saved at Path.
type RenderError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", msg, e.Cause)
	}
	return "render error: " + msg
}

func (e *RenderError) Unwrap() error { return e.Cause }

func templateName(templatePath string) string {
	if templatePath == "" {
		return "built-in"
	}
	return templatePath
}
