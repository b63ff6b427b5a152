package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// Ensure LoggingCache implements fieldscrape.Cache.
var _ fieldscrape.Cache = (*LoggingCache)(nil)

// LoggingCache wraps a Cache with debug logging.
type LoggingCache struct {
	next   fieldscrape.Cache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next fieldscrape.Cache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// Put delegates to the wrapped cache and logs the write.
func (c *LoggingCache) Put(ctx context.Context, ns fieldscrape.Namespace, key string, value []byte) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache put",
			"namespace", string(ns),
			"key", key,
			"bytes", len(value),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Put(ctx, ns, key, value)
}

// Get delegates to the wrapped cache and logs the read. A missing key is
// logged without an error attribute.
func (c *LoggingCache) Get(ctx context.Context, ns fieldscrape.Namespace, key string) (value []byte, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"namespace", string(ns),
			"key", key,
			"bytes", len(value),
			"duration", time.Since(begin),
		}
		if fieldscrape.ErrorCode(err) == fieldscrape.ENOTFOUND {
			attrs = append(attrs, "found", false)
		} else {
			attrs = append(attrs, "err", err)
		}
		c.logger.Debug("cache get", attrs...)
	}(time.Now())
	return c.next.Get(ctx, ns, key)
}

// Close delegates to the wrapped cache.
func (c *LoggingCache) Close() error {
	return c.next.Close()
}
