// Package fetch - retriever.go drives browser sessions through the retry/redirect state machine.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter/internal/types"
)

const (
	// DefaultMaxRetries is the number of browser attempts per posting.
	DefaultMaxRetries = 3
	// DefaultSettleDelay is the fixed wait after each navigation.
	DefaultSettleDelay = 1 * time.Second
	// DefaultBodyTimeout bounds the wait for the body element.
	DefaultBodyTimeout = 10 * time.Second
)

// RetrievalKind classifies why retrieval gave up.
type RetrievalKind string

const (
	// KindRedirectExhausted means the hosting site kept redirecting away from the posting.
	KindRedirectExhausted RetrievalKind = "redirect_exhausted"
	// KindContentUnavailable means no attempt produced page content.
	KindContentUnavailable RetrievalKind = "content_unavailable"
)

// RetrievalError is returned when every attempt failed. It matches ErrNotFound.
type RetrievalError struct {
	URL      string
	Kind     RetrievalKind
	Attempts int
	Cause    error
}

func (e *RetrievalError) Error() string {
	msg := fmt.Sprintf("retrieval of %s failed after %d attempts (%s)", e.URL, e.Attempts, e.Kind)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Is reports ErrNotFound so callers can detect the sentinel outcome.
func (e *RetrievalError) Is(target error) bool {
	return target == ErrNotFound
}

// errRedirected marks an attempt that stayed on a foreign page after the reload.
var errRedirected = errors.New("redirected away from posting")

// RetrieverOptions configures the Retriever.
type RetrieverOptions struct {
	MaxRetries     int
	SettleDelay    time.Duration
	BodyTimeout    time.Duration
	HostingDomains []string
}

// DefaultRetrieverOptions returns the standard retrieval settings.
func DefaultRetrieverOptions() *RetrieverOptions {
	return &RetrieverOptions{
		MaxRetries:     DefaultMaxRetries,
		SettleDelay:    DefaultSettleDelay,
		BodyTimeout:    DefaultBodyTimeout,
		HostingDomains: DefaultHostingDomains(),
	}
}

// Retriever loads postings in fresh browser sessions and detects login-wall redirects.
type Retriever struct {
	newSession SessionFactory
	opts       RetrieverOptions
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRetriever creates a Retriever. A nil factory uses NewChromeSession; nil opts use defaults.
func NewRetriever(factory SessionFactory, opts *RetrieverOptions, logger zerolog.Logger) *Retriever {
	if factory == nil {
		factory = NewChromeSession
	}
	if opts == nil {
		opts = DefaultRetrieverOptions()
	}

	resolved := *opts
	if resolved.MaxRetries <= 0 {
		resolved.MaxRetries = DefaultMaxRetries
	}
	if resolved.BodyTimeout <= 0 {
		resolved.BodyTimeout = DefaultBodyTimeout
	}
	if resolved.SettleDelay < 0 {
		resolved.SettleDelay = 0
	}
	if resolved.HostingDomains == nil {
		resolved.HostingDomains = DefaultHostingDomains()
	}

	return &Retriever{
		newSession: factory,
		opts:       resolved,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Retrieve runs up to MaxRetries attempts, each in a new session.
// When every attempt fails it returns a nil attempt and a *RetrievalError matching ErrNotFound.
// Session launch failures and context cancellation are returned as-is.
func (r *Retriever) Retrieve(ctx context.Context, req types.PostingRequest) (*types.RetrievalAttempt, error) {
	hosting := IsHostingSite(req.URL, r.opts.HostingDomains)
	r.logger.Debug().
		Str("url", req.URL).
		Str("platform", string(DetectPlatform(req.URL))).
		Bool("hosting_site", hosting).
		Msg("Starting retrieval")

	kind := KindContentUnavailable
	var lastErr error

	for attempt := 1; attempt <= r.opts.MaxRetries; attempt++ {
		result, err := r.attempt(ctx, req, attempt, hosting)
		if err == nil {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var fetchErr *Error
		if errors.As(err, &fetchErr) {
			return nil, err
		}

		lastErr = err
		if errors.Is(err, errRedirected) {
			kind = KindRedirectExhausted
		} else {
			kind = KindContentUnavailable
		}

		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", r.opts.MaxRetries).
			Msg("Retrieval attempt failed")
	}

	r.logger.Warn().Str("url", req.URL).Str("kind", string(kind)).Msg("Max retries reached, skipping URL")
	return nil, &RetrievalError{
		URL:      req.URL,
		Kind:     kind,
		Attempts: r.opts.MaxRetries,
		Cause:    lastErr,
	}
}

// attempt runs one Init -> Loaded -> Verified -> Extracted pass. The session is
// closed on every return path.
func (r *Retriever) attempt(ctx context.Context, req types.PostingRequest, number int, hosting bool) (result *types.RetrievalAttempt, err error) {
	session, err := r.newSession(ctx)
	if err != nil {
		return nil, &Error{URL: req.URL, Message: "failed to start browser session", Cause: err}
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			r.logger.Debug().Err(closeErr).Int("attempt", number).Msg("Browser teardown reported an error")
		}
	}()

	r.logger.Info().Int("attempt", number).Str("url", req.URL).Msg("Navigating to posting")
	current, err := r.load(ctx, session, req.URL)
	if err != nil {
		return nil, err
	}

	if hosting && !MatchesRequested(req.URL, current) {
		r.logger.Info().Int("attempt", number).Str("current_url", current).Msg("Page redirected, reloading")
		current, err = r.load(ctx, session, req.URL)
		if err != nil {
			return nil, err
		}
		if !MatchesRequested(req.URL, current) {
			return nil, fmt.Errorf("%w: landed on %s", errRedirected, current)
		}
	}

	body, err := session.BodyText(ctx, r.opts.BodyTimeout)
	if err != nil {
		r.logger.Warn().Err(err).Int("attempt", number).Msg("Error extracting page body")
		return nil, err
	}

	result = &types.RetrievalAttempt{
		AttemptNumber: number,
		FinalURL:      current,
		RawBodyText:   body,
	}

	if hosting {
		items, err := session.ListItems(ctx)
		if err != nil {
			r.logger.Warn().Err(err).Int("attempt", number).Msg("Failed to collect list items")
		}
		result.ListItemText = strings.Join(items, "\n")
	}

	r.logger.Debug().
		Int("attempt", number).
		Int("body_chars", len(result.RawBodyText)).
		Int("list_chars", len(result.ListItemText)).
		Msg("Extracted page content")

	return result, nil
}

// load navigates, waits the settle delay and reports where the tab ended up.
func (r *Retriever) load(ctx context.Context, session Session, url string) (string, error) {
	if err := session.Navigate(ctx, url); err != nil {
		return "", err
	}
	if err := r.sleep(ctx, r.opts.SettleDelay); err != nil {
		return "", err
	}
	return session.CurrentURL(ctx)
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
