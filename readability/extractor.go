// Package readability implements fieldscrape.Extractor with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/fieldscrape"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements fieldscrape.Extractor at compile time.
var _ fieldscrape.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract the main article from HTML.
// Relative links in the result are resolved against the page URL.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML fetched from pageURL and returns the main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*fieldscrape.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, fieldscrape.Errorf(fieldscrape.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parseURL(pageURL))
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.EFETCH, err, "readability failed for %s", pageURL)
	}

	return &fieldscrape.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}

// parseURL returns nil for an empty or unparsable page URL.
func parseURL(pageURL string) *url.URL {
	if pageURL == "" {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}
