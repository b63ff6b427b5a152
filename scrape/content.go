package scrape

import (
	"context"

	"github.com/fwojciec/fieldscrape"
)

// Ensure ContentLoader implements fieldscrape.ContentFetcher.
var _ fieldscrape.ContentFetcher = (*ContentLoader)(nil)

// ContentLoader turns a URL into RawContent by fetching the page, stripping
// it down with Extractor, and optionally converting the result with Converter.
type ContentLoader struct {
	Fetcher fieldscrape.Fetcher

	// Extractor strips noise from the fetched HTML. If nil the HTML is used
	// as is.
	Extractor fieldscrape.Extractor

	// Converter renders the extracted HTML as text. If nil the extracted
	// HTML is stored.
	Converter fieldscrape.Converter
}

// Fetch retrieves url and normalizes it. Every failure is reported as EFETCH.
func (l *ContentLoader) Fetch(ctx context.Context, url string) (*fieldscrape.RawContent, error) {
	html, err := l.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fetchError(err, "fetch %s", url)
	}

	title := ""
	content := html
	if l.Extractor != nil {
		extracted, err := l.Extractor.Extract(html, url)
		if err != nil {
			return nil, fetchError(err, "extract content from %s", url)
		}
		title = extracted.Title
		content = extracted.ContentHTML
	}

	if l.Converter != nil {
		converted, err := l.Converter.Convert(content)
		if err != nil {
			return nil, fetchError(err, "convert content from %s", url)
		}
		content = converted
	}

	return fieldscrape.NewRawContent(url, title, content), nil
}

// fetchError wraps err as EFETCH unless it already carries that code.
func fetchError(err error, format string, args ...any) error {
	if fieldscrape.ErrorCode(err) == fieldscrape.EFETCH {
		return err
	}
	return fieldscrape.WrapError(fieldscrape.EFETCH, err, format, args...)
}
