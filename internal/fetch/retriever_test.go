package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter/internal/logging"
	"github.com/jonathan/cover-letter/internal/types"
)

// fakeSession replays scripted locations and body results.
type fakeSession struct {
	locations []string // returned by successive CurrentURL calls; last value repeats
	body      string
	bodyErr   error
	items     []string
	navErr    error

	navigations int
	locReads    int
	closed      int
}

func (s *fakeSession) Navigate(_ context.Context, _ string) error {
	s.navigations++
	return s.navErr
}

func (s *fakeSession) CurrentURL(_ context.Context) (string, error) {
	idx := s.locReads
	if idx >= len(s.locations) {
		idx = len(s.locations) - 1
	}
	s.locReads++
	return s.locations[idx], nil
}

func (s *fakeSession) BodyText(_ context.Context, _ time.Duration) (string, error) {
	return s.body, s.bodyErr
}

func (s *fakeSession) ListItems(_ context.Context) ([]string, error) {
	return s.items, nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

// fakeBrowser hands out sessions built by newSession and remembers them.
type fakeBrowser struct {
	newSession func(n int) *fakeSession
	sessions   []*fakeSession
	launchErr  error
}

func (b *fakeBrowser) factory(_ context.Context) (Session, error) {
	if b.launchErr != nil {
		return nil, b.launchErr
	}
	s := b.newSession(len(b.sessions) + 1)
	b.sessions = append(b.sessions, s)
	return s, nil
}

func (b *fakeBrowser) allClosed(t *testing.T) {
	t.Helper()
	for i, s := range b.sessions {
		assert.Equal(t, 1, s.closed, "session %d should be closed exactly once", i+1)
	}
}

func testOptions(domains ...string) *RetrieverOptions {
	return &RetrieverOptions{
		MaxRetries:     3,
		SettleDelay:    0,
		BodyTimeout:    10 * time.Millisecond,
		HostingDomains: domains,
	}
}

func TestRetrieve_RedirectExhausted(t *testing.T) {
	const requested = "https://hosting-site.example/jobs/123"
	browser := &fakeBrowser{newSession: func(int) *fakeSession {
		return &fakeSession{locations: []string{"https://hosting-site.example/login"}, body: "login"}
	}}

	r := NewRetriever(browser.factory, testOptions("hosting-site.example"), logging.Nop())
	attempt, err := r.Retrieve(context.Background(), types.PostingRequest{URL: requested})

	assert.Nil(t, attempt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, KindRedirectExhausted, retrievalErr.Kind)
	assert.Equal(t, 3, retrievalErr.Attempts)

	require.Len(t, browser.sessions, 3, "each attempt uses a fresh session")
	for _, s := range browser.sessions {
		assert.Equal(t, 2, s.navigations, "initial load plus one reload")
	}
	browser.allClosed(t)
}

func TestRetrieve_ReloadRecovers(t *testing.T) {
	const requested = "https://www.linkedin.com/jobs/view/42"
	browser := &fakeBrowser{newSession: func(int) *fakeSession {
		return &fakeSession{
			locations: []string{"https://www.linkedin.com/authwall", requested + "?trk=guest"},
			body:      "Acme Corp\nSoftware Engineer",
			items:     []string{"Go", "SQL"},
		}
	}}

	r := NewRetriever(browser.factory, testOptions("linkedin.com"), logging.Nop())
	attempt, err := r.Retrieve(context.Background(), types.PostingRequest{URL: requested})

	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Equal(t, requested+"?trk=guest", attempt.FinalURL)
	assert.Equal(t, "Acme Corp\nSoftware Engineer", attempt.RawBodyText)
	assert.Equal(t, "Go\nSQL", attempt.ListItemText)

	require.Len(t, browser.sessions, 1)
	assert.Equal(t, 2, browser.sessions[0].navigations)
	browser.allClosed(t)
}

func TestRetrieve_RetriesWithFreshSession(t *testing.T) {
	const requested = "https://www.linkedin.com/jobs/view/42"
	browser := &fakeBrowser{newSession: func(n int) *fakeSession {
		if n == 1 {
			return &fakeSession{locations: []string{"https://www.linkedin.com/login"}}
		}
		return &fakeSession{locations: []string{requested}, body: "posting"}
	}}

	r := NewRetriever(browser.factory, testOptions("linkedin.com"), logging.Nop())
	attempt, err := r.Retrieve(context.Background(), types.PostingRequest{URL: requested})

	require.NoError(t, err)
	assert.Equal(t, 2, attempt.AttemptNumber)
	assert.Len(t, browser.sessions, 2)
	browser.allClosed(t)
}

func TestRetrieve_GenericSiteSkipsRedirectCheck(t *testing.T) {
	browser := &fakeBrowser{newSession: func(int) *fakeSession {
		return &fakeSession{
			locations: []string{"https://careers.example.com/somewhere-else"},
			body:      "Body text",
			items:     []string{"should not be read"},
		}
	}}

	r := NewRetriever(browser.factory, testOptions("linkedin.com"), logging.Nop())
	attempt, err := r.Retrieve(context.Background(), types.PostingRequest{URL: "https://careers.example.com/jobs/7"})

	require.NoError(t, err)
	assert.Equal(t, "Body text", attempt.RawBodyText)
	assert.Empty(t, attempt.ListItemText)
	assert.Equal(t, 1, browser.sessions[0].navigations)
	browser.allClosed(t)
}

func TestRetrieve_BodyTimeoutCountsTowardBudget(t *testing.T) {
	browser := &fakeBrowser{newSession: func(int) *fakeSession {
		return &fakeSession{
			locations: []string{"https://careers.example.com/jobs/7"},
			bodyErr:   ErrBodyTimeout,
		}
	}}

	r := NewRetriever(browser.factory, testOptions(), logging.Nop())
	attempt, err := r.Retrieve(context.Background(), types.PostingRequest{URL: "https://careers.example.com/jobs/7"})

	assert.Nil(t, attempt)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrBodyTimeout)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.Equal(t, KindContentUnavailable, retrievalErr.Kind)
	assert.Len(t, browser.sessions, 3)
	browser.allClosed(t)
}

func TestRetrieve_NavigationErrorRetries(t *testing.T) {
	navErr := errors.New("net::ERR_CONNECTION_RESET")
	browser := &fakeBrowser{newSession: func(n int) *fakeSession {
		if n < 3 {
			return &fakeSession{locations: []string{""}, navErr: navErr}
		}
		return &fakeSession{locations: []string{"https://careers.example.com/jobs/7"}, body: "ok"}
	}}

	r := NewRetriever(browser.factory, testOptions(), logging.Nop())
	attempt, err := r.Retrieve(context.Background(), types.PostingRequest{URL: "https://careers.example.com/jobs/7"})

	require.NoError(t, err)
	assert.Equal(t, 3, attempt.AttemptNumber)
	browser.allClosed(t)
}

func TestRetrieve_LaunchFailureIsFatal(t *testing.T) {
	browser := &fakeBrowser{launchErr: errors.New("chrome not found")}

	r := NewRetriever(browser.factory, testOptions(), logging.Nop())
	_, err := r.Retrieve(context.Background(), types.PostingRequest{URL: "https://careers.example.com/jobs/7"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestRetrieve_CanceledContext(t *testing.T) {
	browser := &fakeBrowser{newSession: func(int) *fakeSession {
		return &fakeSession{locations: []string{"https://careers.example.com/jobs/7"}, body: "ok"}
	}}

	opts := testOptions()
	opts.SettleDelay = time.Hour
	r := NewRetriever(browser.factory, opts, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Retrieve(ctx, types.PostingRequest{URL: "https://careers.example.com/jobs/7"})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, browser.sessions, 1)
	browser.allClosed(t)
}

func TestNewRetriever_Defaults(t *testing.T) {
	r := NewRetriever(nil, &RetrieverOptions{}, logging.Nop())

	assert.Equal(t, DefaultMaxRetries, r.opts.MaxRetries)
	assert.Equal(t, DefaultBodyTimeout, r.opts.BodyTimeout)
	assert.Equal(t, DefaultHostingDomains(), r.opts.HostingDomains)
	assert.NotNil(t, r.newSession)
}

func TestRetrievalError_Message(t *testing.T) {
	err := &RetrievalError{URL: "https://x.example/1", Kind: KindRedirectExhausted, Attempts: 3, Cause: errRedirected}
	assert.Equal(t,
		"retrieval of https://x.example/1 failed after 3 attempts (redirect_exhausted): redirected away from posting",
		err.Error())
}
