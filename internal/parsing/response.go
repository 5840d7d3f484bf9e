// Package parsing turns AI responses into validated job details and retries
// extraction until a usable company and position come back.
package parsing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cover-letter/internal/llm"
	"github.com/jonathan/cover-letter/internal/schemas"
	"github.com/jonathan/cover-letter/internal/types"
)

// DecodeObject finds the first JSON object in response, checks it against the
// embedded schema and decodes it into v. Every failure is a *ParseError.
func DecodeObject(response, schema string, v any) error {
	block := llm.ExtractJSONObject(response)
	if block == "" {
		return &ParseError{Message: "no JSON object found in response"}
	}
	if !json.Valid([]byte(block)) {
		return &ParseError{Message: "response contains malformed JSON", Cause: fmt.Errorf("%.80q", block)}
	}
	if err := schemas.Validate(schema, block); err != nil {
		return &ParseError{Message: "response does not match expected structure", Cause: err}
	}
	if err := json.Unmarshal([]byte(block), v); err != nil {
		return &ParseError{Message: "failed to decode JSON", Cause: err}
	}
	return nil
}

type extractionResponse struct {
	CompanyName  string          `json:"company_name"`
	PositionName string          `json:"position_name"`
	Requirements json.RawMessage `json:"requirements"`
}

// ParseExtraction decodes an extraction response. Names are trimmed; requirements
// may be a string or a list of strings. A result missing the company or position
// yields a *ValidationError.
func ParseExtraction(response string) (types.ExtractionResult, error) {
	var raw extractionResponse
	if err := DecodeObject(response, schemas.Extraction, &raw); err != nil {
		return types.ExtractionResult{}, err
	}

	requirements, err := decodeRequirements(raw.Requirements)
	if err != nil {
		return types.ExtractionResult{}, err
	}

	result := types.ExtractionResult{
		CompanyName:  strings.TrimSpace(raw.CompanyName),
		PositionName: strings.TrimSpace(raw.PositionName),
		Requirements: requirements,
	}

	if result.CompanyName == "" {
		return types.ExtractionResult{}, &ValidationError{Field: "company_name", Message: "empty after trimming"}
	}
	if result.PositionName == "" {
		return types.ExtractionResult{}, &ValidationError{Field: "position_name", Message: "empty after trimming"}
	}

	return result, nil
}

func decodeRequirements(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text), nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", &ParseError{Message: "requirements must be a string or a list of strings", Cause: err}
	}
	return JoinRequirements(items), nil
}
