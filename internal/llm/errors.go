// Package llm - errors.go defines the gateway error taxonomy.
package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	// ErrMaxRetriesReached is wrapped when every retry hit a quota limit.
	ErrMaxRetriesReached = errors.New("max retries reached")
	// ErrNoAPIKeys is returned when a gateway is built without a usable key.
	ErrNoAPIKeys = errors.New("no API keys configured")
	// ErrBlocked is returned when the service withholds a response, for example on safety grounds.
	ErrBlocked = errors.New("response blocked")
)

// QuotaError records a quota rejection for the key at KeyIndex.
type QuotaError struct {
	KeyIndex int
	Cause    error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exhausted for API key #%d: %v", e.KeyIndex+1, e.Cause)
}

func (e *QuotaError) Unwrap() error {
	return e.Cause
}

// GenerationError is returned when the AI service call cannot produce a response.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// IsQuotaExhausted reports whether err is a rate-limit or quota rejection.
// Matches HTTP 429 API errors and RESOURCE_EXHAUSTED/quota messages.
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}
