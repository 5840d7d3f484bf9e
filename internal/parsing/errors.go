package parsing

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an extraction that never produced a company and position.
var ErrNotFound = errors.New("job details not found")

// ParseError represents an error parsing the API response
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a parsed response whose values are unusable
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ExtractionError is returned when every extraction attempt failed. It matches ErrNotFound.
type ExtractionError struct {
	Attempts int
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed after %d attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("extraction failed after %d attempts", e.Attempts)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Is reports ErrNotFound so callers can detect the sentinel outcome.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrNotFound
}
