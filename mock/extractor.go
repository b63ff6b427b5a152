package mock

import "github.com/fwojciec/fieldscrape"

var _ fieldscrape.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of fieldscrape.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*fieldscrape.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*fieldscrape.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
