// Package slog provides logging decorators for the fieldscrape services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// Ensure LoggingFetcher implements fieldscrape.Fetcher.
var _ fieldscrape.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   fieldscrape.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next fieldscrape.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingContentFetcher implements fieldscrape.ContentFetcher.
var _ fieldscrape.ContentFetcher = (*LoggingContentFetcher)(nil)

// LoggingContentFetcher wraps a ContentFetcher with logging.
type LoggingContentFetcher struct {
	next   fieldscrape.ContentFetcher
	logger *slog.Logger
}

// NewLoggingContentFetcher creates a new LoggingContentFetcher.
func NewLoggingContentFetcher(next fieldscrape.ContentFetcher, logger *slog.Logger) *LoggingContentFetcher {
	return &LoggingContentFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the normalized size.
func (f *LoggingContentFetcher) Fetch(ctx context.Context, url string) (content *fieldscrape.RawContent, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin), "err", err}
		if content != nil {
			attrs = append(attrs, "bytes", len(content.Content), "hash", content.ContentHash)
		}
		f.logger.Info("content", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
