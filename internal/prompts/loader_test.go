package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(CoverLetterFile, KeyExtractJobDetails)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobText}}")
	assert.Contains(t, prompt, `"company_name"`)
	assert.Contains(t, prompt, `"position_name"`)
	assert.Contains(t, prompt, `"requirements"`)
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(CoverLetterFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestList(t *testing.T) {
	keys, err := List(CoverLetterFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyClosingSentence, KeyExtractJobDetails, KeyValuesParagraph}, keys)
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! {{.Unknown}}"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp! {{.Unknown}}", Format(template, data))
}

func TestRender_ClosingSentence(t *testing.T) {
	prompt, err := Render(KeyClosingSentence, map[string]string{
		"JobText":           "Build APIs in Go.",
		"Requirements":      "Go, PostgreSQL",
		"CompanyName":       "Acme",
		"CompanyPossessive": "Acme's",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Build APIs in Go.")
	assert.Contains(t, prompt, `"Go, PostgreSQL"`)
	assert.Contains(t, prompt, `"Acme's"`)
	assert.Contains(t, prompt, "I am eager to leverage")
	assert.Contains(t, prompt, `"closing_sentence"`)
	assert.NotContains(t, prompt, "{{.")
}

func TestRender_ValuesParagraphEmbedsClosingSentence(t *testing.T) {
	prompt, err := Render(KeyValuesParagraph, map[string]string{
		"JobText":           "posting",
		"CompanyName":       "Siemens",
		"CompanyPossessive": "Siemens’",
		"ClosingSentence":   "I am eager to leverage my Go experience.",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "I am drawn by")
	assert.Contains(t, prompt, "2-3 sentences")
	assert.Contains(t, prompt, `"I am eager to leverage my Go experience."`)
	assert.Contains(t, prompt, `"values_paragraph"`)
	assert.NotContains(t, prompt, "{{.")
}

func TestRender_UnknownKey(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}
