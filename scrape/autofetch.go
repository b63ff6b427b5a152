package scrape

import (
	"context"
	"errors"

	"github.com/fwojciec/fieldscrape"
)

// ContentDiffers reports whether rendering the page in a browser yields
// meaningfully more content than the static HTML: more than 50% longer after
// extraction. Extraction errors count as a difference.
func ContentDiffers(staticHTML, renderedHTML, pageURL string, extractor fieldscrape.Extractor) bool {
	staticResult, err := extractor.Extract(staticHTML, pageURL)
	if err != nil {
		return true
	}

	renderedResult, err := extractor.Extract(renderedHTML, pageURL)
	if err != nil {
		return true
	}

	staticLen := len(staticResult.ContentHTML)
	renderedLen := len(renderedResult.ContentHTML)

	if staticLen == 0 && renderedLen > 0 {
		return true
	}

	return float64(renderedLen) > float64(staticLen)*1.5
}

// Ensure AutoFetcher implements fieldscrape.Fetcher.
var _ fieldscrape.Fetcher = (*AutoFetcher)(nil)

// AutoFetcher fetches a page both statically and with a browser and keeps
// the rendered HTML only when it carries noticeably more content.
type AutoFetcher struct {
	Static    fieldscrape.Fetcher
	Rendered  fieldscrape.Fetcher
	Extractor fieldscrape.Extractor
}

// Fetch returns whichever HTML better represents the page. If one of the
// two fetches fails the other's result is used.
func (f *AutoFetcher) Fetch(ctx context.Context, url string) (string, error) {
	staticHTML, staticErr := f.Static.Fetch(ctx, url)
	renderedHTML, renderedErr := f.Rendered.Fetch(ctx, url)

	switch {
	case staticErr != nil && renderedErr != nil:
		return "", errors.Join(staticErr, renderedErr)
	case staticErr != nil:
		return renderedHTML, nil
	case renderedErr != nil:
		return staticHTML, nil
	}

	if ContentDiffers(staticHTML, renderedHTML, url, f.Extractor) {
		return renderedHTML, nil
	}
	return staticHTML, nil
}

// Close closes both fetchers.
func (f *AutoFetcher) Close() error {
	return errors.Join(f.Static.Close(), f.Rendered.Close())
}
