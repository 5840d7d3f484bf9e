package parsing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter/internal/llm"
	"github.com/jonathan/cover-letter/internal/logging"
	"github.com/jonathan/cover-letter/internal/types"
)

type scriptedGenerator struct {
	responses []string
	errs      []error
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	idx := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	if idx < len(g.errs) && g.errs[idx] != nil {
		return "", g.errs[idx]
	}
	if idx >= len(g.responses) {
		return g.responses[len(g.responses)-1], nil
	}
	return g.responses[idx], nil
}

func newTestExtractor(gen Generator) *Extractor {
	return NewExtractor(gen, ExtractorOptions{RetryPause: -1}, logging.Nop())
}

func TestExtract_EndToEnd(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"company_name":"Acme","position_name":"Software Engineer","requirements":"Go, SQL"}`,
	}}
	posting := types.CleanedPosting{Text: "Acme Corp\nSoftware Engineer II - Platform"}

	result, err := newTestExtractor(gen).Extract(context.Background(), posting)

	require.NoError(t, err)
	assert.Equal(t, "Acme", result.CompanyName)
	assert.Equal(t, "Software Engineer", result.PositionName)
	assert.Equal(t, "Go, SQL", result.Requirements)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Acme Corp\nSoftware Engineer II - Platform")
}

func TestExtract_RepromptsOnParseFailure(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"I am not sure what you mean.",
		`{"company_name": "", "position_name": "Engineer"}`,
		"Sure! ```json\n{\"company_name\": \"Acme\", \"position_name\": \"Software Engineer\"}\n```",
	}}

	result, err := newTestExtractor(gen).Extract(context.Background(), types.CleanedPosting{Text: "posting"})

	require.NoError(t, err)
	assert.Equal(t, "Acme", result.CompanyName)
	assert.Len(t, gen.prompts, 3)
}

func TestExtract_ExhaustionReturnsSentinel(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"company_name": "", "position_name": ""}`}}

	result, err := newTestExtractor(gen).Extract(context.Background(), types.CleanedPosting{Text: "posting"})

	assert.True(t, result.IsNotFound())
	assert.ErrorIs(t, err, ErrNotFound)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, DefaultMaxRetries, extractionErr.Attempts)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Len(t, gen.prompts, DefaultMaxRetries)
}

func TestExtract_GenerationErrorIsFatal(t *testing.T) {
	genErr := &llm.GenerationError{Message: "quota exhausted", Cause: llm.ErrMaxRetriesReached}
	gen := &scriptedGenerator{
		responses: []string{`{"company_name": "Acme", "position_name": "Engineer"}`},
		errs:      []error{genErr},
	}

	result, err := newTestExtractor(gen).Extract(context.Background(), types.CleanedPosting{Text: "posting"})

	assert.True(t, result.IsNotFound())
	assert.ErrorIs(t, err, llm.ErrMaxRetriesReached)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Len(t, gen.prompts, 1)
}

func TestExtract_PauseHonorsContext(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"no json here"}}
	extractor := NewExtractor(gen, ExtractorOptions{RetryPause: time.Hour}, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.Extract(ctx, types.CleanedPosting{Text: "posting"})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, gen.prompts, 1)
}

func TestNewExtractor_Defaults(t *testing.T) {
	extractor := NewExtractor(&scriptedGenerator{}, ExtractorOptions{}, logging.Nop())
	assert.Equal(t, DefaultMaxRetries, extractor.opts.MaxRetries)
	assert.Equal(t, DefaultRetryPause, extractor.opts.RetryPause)
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt, err := BuildExtractionPrompt("Acme is hiring")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Acme is hiring")
	assert.Contains(t, prompt, "co-op")
	assert.NotContains(t, prompt, "{{.JobText}}")
}
