package fieldscrape

import "context"

// Fetcher retrieves HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// Non-success statuses, unreachable hosts, and timeouts are errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases underlying resources (browsers, connections).
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
