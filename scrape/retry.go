package scrape

import (
	"context"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryDelays returns n exponential backoff delays starting at 1s.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, n)
	d := time.Second
	for range n {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// FetchWithRetryDelays calls fetch until it succeeds, waiting delays[i]
// before retry i+1. It makes at most len(delays)+1 attempts and returns the
// last error.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}

// Ensure RetryFetcher implements fieldscrape.Fetcher.
var _ fieldscrape.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries a Fetcher with backoff.
type RetryFetcher struct {
	Fetcher fieldscrape.Fetcher

	// Delays between attempts. Defaults to DefaultRetryDelays.
	Delays []time.Duration

	Logger LogFunc
}

// Fetch fetches url, retrying on failure.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	delays := f.Delays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, url, f.Fetcher.Fetch, f.Logger, delays)
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.Fetcher.Close()
}
