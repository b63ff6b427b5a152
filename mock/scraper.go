package mock

import (
	"context"

	"github.com/fwojciec/fieldscrape"
)

var _ fieldscrape.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of fieldscrape.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, req fieldscrape.ScrapeRequest) (*fieldscrape.ScrapeResult, error)
}

func (s *Scraper) Scrape(ctx context.Context, req fieldscrape.ScrapeRequest) (*fieldscrape.ScrapeResult, error) {
	return s.ScrapeFn(ctx, req)
}

var _ fieldscrape.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of fieldscrape.RecordService.
type RecordService struct {
	FindRecordFn   func(ctx context.Context, key string) (*fieldscrape.StructuredRecord, error)
	ExportRecordFn func(ctx context.Context, key string, format fieldscrape.ExportFormat) ([]byte, error)
}

func (s *RecordService) FindRecord(ctx context.Context, key string) (*fieldscrape.StructuredRecord, error) {
	return s.FindRecordFn(ctx, key)
}

func (s *RecordService) ExportRecord(ctx context.Context, key string, format fieldscrape.ExportFormat) ([]byte, error) {
	return s.ExportRecordFn(ctx, key, format)
}

var _ fieldscrape.ModelCatalog = (*ModelCatalog)(nil)

// ModelCatalog is a mock implementation of fieldscrape.ModelCatalog.
type ModelCatalog struct {
	ModelsFn  func(ctx context.Context) ([]string, error)
	RefreshFn func(ctx context.Context) ([]string, error)
}

func (c *ModelCatalog) Models(ctx context.Context) ([]string, error) {
	return c.ModelsFn(ctx)
}

func (c *ModelCatalog) Refresh(ctx context.Context) ([]string, error) {
	return c.RefreshFn(ctx)
}
