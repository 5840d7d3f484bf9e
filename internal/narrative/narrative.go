// Package narrative generates the cover letter's closing sentence and values paragraph.
package narrative

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter/internal/parsing"
	"github.com/jonathan/cover-letter/internal/prompts"
	"github.com/jonathan/cover-letter/internal/schemas"
	"github.com/jonathan/cover-letter/internal/types"
)

// Generator runs the two narrative prompts in order.
type Generator struct {
	gen    parsing.Generator
	logger zerolog.Logger
}

// NewGenerator creates a Generator over gen.
func NewGenerator(gen parsing.Generator, logger zerolog.Logger) *Generator {
	return &Generator{gen: gen, logger: logger}
}

type closingResponse struct {
	ClosingSentence string `json:"closing_sentence"`
}

type valuesResponse struct {
	ValuesParagraph string `json:"values_paragraph"`
}

// Generate produces the closing sentence, then the values paragraph with the
// closing sentence passed as a constraint. There is no re-prompt: a response
// that cannot be parsed is returned as a *parsing.ParseError.
func (g *Generator) Generate(ctx context.Context, details types.ExtractionResult, posting types.CleanedPosting) (types.NarrativeBundle, error) {
	data := map[string]string{
		"JobText":           posting.Text,
		"Requirements":      details.Requirements,
		"CompanyName":       details.CompanyName,
		"CompanyPossessive": details.CompanyPossessive(),
	}

	var closing closingResponse
	if err := g.ask(ctx, prompts.KeyClosingSentence, schemas.ClosingSentence, data, &closing); err != nil {
		return types.NarrativeBundle{}, err
	}
	closingSentence := strings.TrimSpace(closing.ClosingSentence)
	g.logger.Debug().Str("company", details.CompanyName).Msg("Generated closing sentence")

	data["ClosingSentence"] = closingSentence
	var values valuesResponse
	if err := g.ask(ctx, prompts.KeyValuesParagraph, schemas.ValuesParagraph, data, &values); err != nil {
		return types.NarrativeBundle{}, err
	}
	g.logger.Debug().Str("company", details.CompanyName).Msg("Generated values paragraph")

	return types.NarrativeBundle{
		ClosingSentence: closingSentence,
		ValuesParagraph: strings.TrimSpace(values.ValuesParagraph),
	}, nil
}

func (g *Generator) ask(ctx context.Context, key, schema string, data map[string]string, out any) error {
	prompt, err := prompts.Render(key, data)
	if err != nil {
		return err
	}

	response, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	if err := parsing.DecodeObject(response, schema, out); err != nil {
		g.logger.Error().Err(err).Str("prompt", key).Msg("Error parsing JSON")
		return err
	}
	return nil
}
