package mock

import (
	"context"

	"github.com/fwojciec/fieldscrape"
)

var _ fieldscrape.ContentFetcher = (*ContentFetcher)(nil)

// ContentFetcher is a mock implementation of fieldscrape.ContentFetcher.
type ContentFetcher struct {
	FetchFn func(ctx context.Context, url string) (*fieldscrape.RawContent, error)
}

func (f *ContentFetcher) Fetch(ctx context.Context, url string) (*fieldscrape.RawContent, error) {
	return f.FetchFn(ctx, url)
}
