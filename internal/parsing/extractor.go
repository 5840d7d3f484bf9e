package parsing

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter/internal/prompts"
	"github.com/jonathan/cover-letter/internal/types"
)

const (
	// DefaultMaxRetries is the number of AI calls made for one extraction.
	DefaultMaxRetries = 3
	// DefaultRetryPause is the wait between failed extraction attempts.
	DefaultRetryPause = 1 * time.Second
)

// Generator produces model text for a prompt. *llm.Gateway implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	MaxRetries int
	RetryPause time.Duration
}

// Extractor derives company, position and requirements from a cleaned posting.
type Extractor struct {
	gen    Generator
	opts   ExtractorOptions
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExtractor creates an Extractor. Zero options fall back to the defaults;
// a negative RetryPause disables the pause.
func NewExtractor(gen Generator, opts ExtractorOptions, logger zerolog.Logger) *Extractor {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryPause == 0 {
		opts.RetryPause = DefaultRetryPause
	}
	if opts.RetryPause < 0 {
		opts.RetryPause = 0
	}
	return &Extractor{gen: gen, opts: opts, logger: logger, sleep: sleepContext}
}

// BuildExtractionPrompt renders the extraction prompt for posting text.
func BuildExtractionPrompt(jobText string) (string, error) {
	return prompts.Render(prompts.KeyExtractJobDetails, map[string]string{"JobText": jobText})
}

// Extract asks the model for the posting's details, re-prompting when the
// response cannot be parsed or lacks a company or position. Generation errors
// are returned immediately. When every attempt fails it returns the zero
// ExtractionResult and an *ExtractionError matching ErrNotFound.
func (e *Extractor) Extract(ctx context.Context, posting types.CleanedPosting) (types.ExtractionResult, error) {
	prompt, err := BuildExtractionPrompt(posting.Text)
	if err != nil {
		return types.ExtractionResult{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= e.opts.MaxRetries; attempt++ {
		e.logger.Debug().Int("attempt", attempt).Int("chars", len(posting.Text)).Msg("Extracting job details")

		response, err := e.gen.Generate(ctx, prompt)
		if err != nil {
			return types.ExtractionResult{}, err
		}

		result, err := ParseExtraction(response)
		if err == nil {
			e.logger.Info().
				Str("company", result.CompanyName).
				Str("position", result.PositionName).
				Int("attempt", attempt).
				Msg("Extracted job details")
			return result, nil
		}

		var parseErr *ParseError
		var validationErr *ValidationError
		if !errors.As(err, &parseErr) && !errors.As(err, &validationErr) {
			return types.ExtractionResult{}, err
		}

		lastErr = err
		e.logger.Warn().Err(err).Int("attempt", attempt).Int("max_retries", e.opts.MaxRetries).Msg("Failed to extract details, retrying")

		if attempt < e.opts.MaxRetries {
			if err := e.sleep(ctx, e.opts.RetryPause); err != nil {
				return types.ExtractionResult{}, err
			}
		}
	}

	return types.ExtractionResult{}, &ExtractionError{Attempts: e.opts.MaxRetries, Cause: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
