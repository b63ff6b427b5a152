package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fieldscrape"
	"github.com/fwojciec/fieldscrape/scrape"
)

// Ensure LoggingScraper implements fieldscrape.Scraper.
var _ fieldscrape.Scraper = (*LoggingScraper)(nil)

// LoggingScraper wraps a Scraper with logging.
type LoggingScraper struct {
	next   fieldscrape.Scraper
	logger *slog.Logger
}

// NewLoggingScraper creates a new LoggingScraper.
func NewLoggingScraper(next fieldscrape.Scraper, logger *slog.Logger) *LoggingScraper {
	return &LoggingScraper{next: next, logger: logger}
}

// Scrape delegates to the wrapped scraper and logs the outcome.
func (s *LoggingScraper) Scrape(ctx context.Context, req fieldscrape.ScrapeRequest) (res *fieldscrape.ScrapeResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", req.URL, "fields", len(req.Fields), "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs, "key", res.Key, "raw_key", res.RawKey, "model", res.Model, "rows", res.Record.Rows())
		}
		if err != nil {
			attrs = append(attrs, "code", fieldscrape.ErrorCode(err), "err", err)
		}
		s.logger.Info("scrape", attrs...)
	}(time.Now())
	return s.next.Scrape(ctx, req)
}

// Ensure LoggingModelCatalog implements fieldscrape.ModelCatalog.
var _ fieldscrape.ModelCatalog = (*LoggingModelCatalog)(nil)

// LoggingModelCatalog wraps a ModelCatalog, logging refreshes.
type LoggingModelCatalog struct {
	next   fieldscrape.ModelCatalog
	logger *slog.Logger
}

// NewLoggingModelCatalog creates a new LoggingModelCatalog.
func NewLoggingModelCatalog(next fieldscrape.ModelCatalog, logger *slog.Logger) *LoggingModelCatalog {
	return &LoggingModelCatalog{next: next, logger: logger}
}

// Models delegates to the wrapped catalog.
func (c *LoggingModelCatalog) Models(ctx context.Context) ([]string, error) {
	return c.next.Models(ctx)
}

// Refresh delegates to the wrapped catalog and logs the model count.
func (c *LoggingModelCatalog) Refresh(ctx context.Context) (models []string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("catalog refresh",
			"count", len(models),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Refresh(ctx)
}

// NewProgressLogger returns a ProgressFunc that logs each pipeline state
// transition at debug level.
func NewProgressLogger(logger *slog.Logger) scrape.ProgressFunc {
	return func(e scrape.ProgressEvent) {
		attrs := []any{"state", e.State.String(), "url", e.URL}
		if e.Key != "" {
			attrs = append(attrs, "key", e.Key)
		}
		if e.Err != nil {
			attrs = append(attrs, "err", e.Err)
		}
		logger.Debug("pipeline", attrs...)
	}
}
