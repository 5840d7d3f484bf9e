// Package fetch - browser.go provides the headless browser session used by the Retriever.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Session is one isolated browser session.
// Implementations must release every browser resource in Close.
type Session interface {
	// Navigate loads url in the session's tab.
	Navigate(ctx context.Context, url string) error
	// CurrentURL returns the URL the tab currently shows.
	CurrentURL(ctx context.Context) (string, error)
	// BodyText waits up to timeout for the body element and returns its visible text.
	BodyText(ctx context.Context, timeout time.Duration) (string, error)
	// ListItems returns the trimmed text of every list item inside an unordered list.
	ListItems(ctx context.Context) ([]string, error)
	// Close tears the session down.
	Close() error
}

// SessionFactory opens a new Session.
type SessionFactory func(ctx context.Context) (Session, error)

// ChromeSession is a Session backed by a private headless Chrome instance.
// Requires Chrome/Chromium to be installed on the system.
type ChromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	closed  bool
}

// NewChromeSession launches a headless, incognito Chrome with a throwaway profile.
func NewChromeSession(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("incognito", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &ChromeSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
	}, nil
}

// Navigate loads url and waits for the navigation to commit.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, 0, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// CurrentURL returns the tab's location.
func (s *ChromeSession) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, 0, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// BodyText waits for the body element and returns its innerText.
func (s *ChromeSession) BodyText(ctx context.Context, timeout time.Duration) (string, error) {
	var text string
	err := s.run(ctx, timeout,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s", ErrBodyTimeout, timeout)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return text, nil
}

// ListItems reads the body HTML and collects the text of every ul > li.
func (s *ChromeSession) ListItems(ctx context.Context) ([]string, error) {
	var html string
	if err := s.run(ctx, 0, chromedp.OuterHTML("body", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to read body HTML: %w", err)
	}
	return ListItemsFromHTML(html)
}

// Close shuts the browser down and removes its temporary profile.
func (s *ChromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.ctx)
	for _, cancel := range s.cancels {
		cancel()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// run executes actions on the browser tab, bounded by timeout when positive and
// aborted when the caller's ctx ends.
func (s *ChromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if timeout > 0 {
		var timeoutCancel context.CancelFunc
		runCtx, timeoutCancel = context.WithTimeout(runCtx, timeout)
		defer timeoutCancel()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// ListItemsFromHTML returns the trimmed text of each list item found under an
// unordered list, in document order. Empty items are dropped.
func ListItemsFromHTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var items []string
	doc.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			text := strings.TrimSpace(li.Text())
			if text != "" {
				items = append(items, text)
			}
		})
	})
	return items, nil
}
