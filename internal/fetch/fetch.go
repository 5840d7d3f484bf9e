// Package fetch retrieves job posting content through a headless browser.
// It owns URL validation, hosting-site detection and the retry/redirect state machine.
package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonathan/cover-letter/internal/types"
)

var (
	// ErrInvalidURL is returned when a URL lacks a scheme or network location.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrNotFound marks a retrieval that exhausted its attempts without usable content.
	ErrNotFound = errors.New("posting not found")
	// ErrBodyTimeout is returned when the body element does not appear in time.
	ErrBodyTimeout = errors.New("timed out waiting for page body")
)

// Error represents an error while retrieving a URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidateURL checks that candidate is an absolute URL with a scheme and a host.
func ValidateURL(candidate string) error {
	parsed, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return &Error{URL: candidate, Message: "unparseable URL", Cause: fmt.Errorf("%w: %w", ErrInvalidURL, err)}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &Error{URL: candidate, Message: "missing scheme or host", Cause: ErrInvalidURL}
	}
	return nil
}

// IsValidURL reports whether candidate passes ValidateURL.
func IsValidURL(candidate string) bool {
	return ValidateURL(candidate) == nil
}

// NewPostingRequest validates rawURL and wraps it in a PostingRequest.
func NewPostingRequest(rawURL string) (types.PostingRequest, error) {
	if err := ValidateURL(rawURL); err != nil {
		return types.PostingRequest{}, err
	}
	return types.PostingRequest{URL: strings.TrimSpace(rawURL)}, nil
}

// MatchesRequested reports whether the browser's current URL still points at the
// requested document. Hosts compare case-insensitively, a trailing slash is ignored,
// the current path may extend the requested path, and query strings are ignored.
func MatchesRequested(requested, current string) bool {
	req, err := url.Parse(requested)
	if err != nil {
		return false
	}
	cur, err := url.Parse(current)
	if err != nil {
		return false
	}

	if !strings.EqualFold(req.Host, cur.Host) {
		return false
	}

	reqPath := strings.TrimSuffix(req.Path, "/")
	curPath := strings.TrimSuffix(cur.Path, "/")
	return curPath == reqPath || strings.HasPrefix(curPath, reqPath+"/")
}
