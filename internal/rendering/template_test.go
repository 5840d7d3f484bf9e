package rendering

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter/internal/types"
)

func testContext() (types.ExtractionResult, types.LetterContext) {
	details := types.ExtractionResult{CompanyName: "Acme & Sons", PositionName: "Software Engineer"}
	bundle := types.NarrativeBundle{
		ClosingSentence: "I am eager to leverage my Go experience for 100% uptime.",
		ValuesParagraph: "I am drawn by Acme's focus on craft.",
	}
	return details, BuildContext(details, bundle, letterDate)
}

func TestRenderLetter_DefaultTemplate(t *testing.T) {
	_, ctx := testContext()

	letter, err := RenderLetter("", ctx)

	require.NoError(t, err)
	assert.Contains(t, letter, "March 07, 2025")
	assert.Contains(t, letter, "Dear Acme & Sons Hiring Team,")
	assert.Contains(t, letter, "As a Software Engineer")
	assert.Contains(t, letter, "I am eager to leverage my Go experience for 100% uptime.")
	assert.Contains(t, letter, "I am drawn by Acme's focus on craft.")
	assert.Contains(t, letter, "Acme & Sons’ team")
}

func TestRenderLetter_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letter.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.short_form}} at {{.company_name}}"), 0644))
	_, ctx := testContext()

	letter, err := RenderLetter(path, ctx)

	require.NoError(t, err)
	assert.Equal(t, "SWE at Acme & Sons", letter)
}

func TestRenderLetter_MissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letter.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.signature}}"), 0644))
	_, ctx := testContext()

	_, err := RenderLetter(path, ctx)

	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "failed to execute template")
}

func TestRenderLetter_MissingFile(t *testing.T) {
	_, ctx := testContext()

	_, err := RenderLetter(filepath.Join(t.TempDir(), "nope.tmpl"), ctx)

	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestRenderLetter_InvalidTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letter.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.company_name"), 0644))
	_, ctx := testContext()

	_, err := RenderLetter(path, ctx)
	assert.ErrorContains(t, err, "failed to parse template")
}

func TestRender_LaTeXEscapesValues(t *testing.T) {
	_, ctx := testContext()

	letter, err := render(FormatLaTeX, "", ctx)

	require.NoError(t, err)
	assert.Contains(t, letter, `\documentclass`)
	assert.Contains(t, letter, `\date{March 07, 2025}`)
	assert.Contains(t, letter, `Dear Acme \& Sons Hiring Team,`)
	assert.Contains(t, letter, `100\% uptime`)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"", FormatText},
		{"txt", FormatText},
		{"TEXT", FormatText},
		{"tex", FormatLaTeX},
		{"latex", FormatLaTeX},
		{" pdf ", FormatPDF},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	_, err := ParseFormat("docx")
	assert.Error(t, err)
}

func TestWriteLetter(t *testing.T) {
	details, ctx := testContext()
	outDir := filepath.Join(t.TempDir(), "letters")

	for _, format := range []Format{FormatText, FormatLaTeX, FormatPDF} {
		t.Run(string(format), func(t *testing.T) {
			path, err := WriteLetter(outDir, format, "", details, ctx, letterDate)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(outDir, "Acme & Sons Software Engineer 2025-03-07."+format.Extension()), path)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, content)
			if format == FormatPDF {
				assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
			}
		})
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF("March 07, 2025\n\nDear Siemens’ team,\r\nI am drawn by rigor.")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestTemplateError_NamesTemplate(t *testing.T) {
	err := &TemplateError{Template: templateName(""), Message: "failed to parse template"}
	assert.Equal(t, "template error (built-in): failed to parse template", err.Error())

	err = &TemplateError{Template: templateName("custom.tmpl"), Message: "template file not found", Cause: os.ErrNotExist}
	assert.Equal(t, "template error (custom.tmpl): template file not found: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteLetter_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	details, ctx := testContext()

	_, err := WriteLetter(filepath.Join(blocker, "out"), FormatText, "", details, ctx, letterDate)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, filepath.Join(blocker, "out"), renderErr.Path)
}
