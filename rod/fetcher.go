// Package rod implements fieldscrape.Fetcher with headless Chrome, for pages
// whose content only exists after JavaScript runs.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 60 * time.Second

// Ensure Fetcher implements fieldscrape.Fetcher at compile time.
var _ fieldscrape.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	fetchTimeout time.Duration
	settle       time.Duration
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch call independently of the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithSettle waits until the DOM has been stable for d after the load event.
// Zero disables the wait.
func WithSettle(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	return NewFetcherWithManager(nil, opts...)
}

// NewFetcherWithManager creates a Fetcher that renders pages with manager.
// If manager is nil a new BrowserManager with default settings is launched.
func NewFetcherWithManager(manager *BrowserManager, opts ...Option) (*Fetcher, error) {
	if manager == nil {
		var err error
		manager, err = NewBrowserManager()
		if err != nil {
			return nil, err
		}
	}

	f := &Fetcher{
		manager:      manager,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", fieldscrape.Errorf(fieldscrape.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.fetchTimeout)
		defer cancel()
	}

	page, release, err := f.manager.NewPage()
	if err != nil {
		return "", err
	}
	defer release()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", fetchError(ctx, err, "navigate to %s", url)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fetchError(ctx, err, "wait for %s to load", url)
	}
	if f.settle > 0 {
		if err := page.WaitDOMStable(f.settle, 0); err != nil {
			return "", fetchError(ctx, err, "wait for %s to settle", url)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fetchError(ctx, err, "read rendered HTML of %s", url)
	}

	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// fetchError wraps err as EFETCH, preserving the context error so callers
// can still match context.DeadlineExceeded.
func fetchError(ctx context.Context, err error, format string, args ...any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fieldscrape.WrapError(fieldscrape.EFETCH, ctxErr, format, args...)
	}
	return fieldscrape.WrapError(fieldscrape.EFETCH, err, format, args...)
}
