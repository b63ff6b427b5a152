package scrape

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/fieldscrape"
	"golang.org/x/time/rate"
)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Requests to different domains never wait on each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// per domain with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Ensure LimitedFetcher implements fieldscrape.Fetcher.
var _ fieldscrape.Fetcher = (*LimitedFetcher)(nil)

// LimitedFetcher waits on a DomainLimiter before every fetch.
type LimitedFetcher struct {
	Fetcher fieldscrape.Fetcher
	Limiter *DomainLimiter
}

// Fetch waits for the URL's host to be allowed, then fetches.
func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fieldscrape.WrapError(fieldscrape.EINVALID, err, "parse URL %q", rawURL)
	}
	if err := f.Limiter.Wait(ctx, u.Host); err != nil {
		return "", err
	}
	return f.Fetcher.Fetch(ctx, rawURL)
}

// Close closes the wrapped fetcher.
func (f *LimitedFetcher) Close() error {
	return f.Fetcher.Close()
}
