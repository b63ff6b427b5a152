package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// Ensure LoggingFieldExtractor implements fieldscrape.FieldExtractor.
var _ fieldscrape.FieldExtractor = (*LoggingFieldExtractor)(nil)

// LoggingFieldExtractor wraps a FieldExtractor with logging.
type LoggingFieldExtractor struct {
	next   fieldscrape.FieldExtractor
	logger *slog.Logger
}

// NewLoggingFieldExtractor creates a new LoggingFieldExtractor.
func NewLoggingFieldExtractor(next fieldscrape.FieldExtractor, logger *slog.Logger) *LoggingFieldExtractor {
	return &LoggingFieldExtractor{next: next, logger: logger}
}

// ExtractFields delegates to the wrapped extractor and logs the model, the
// number of fields, and the number of values found.
func (e *LoggingFieldExtractor) ExtractFields(ctx context.Context, req fieldscrape.ExtractionRequest) (rec *fieldscrape.StructuredRecord, err error) {
	defer func(begin time.Time) {
		values := 0
		if rec != nil {
			for _, f := range rec.Fields() {
				values += len(rec.Values(f))
			}
		}
		e.logger.Info("extract",
			"model", req.Model,
			"fields", len(req.Fields.Unique()),
			"content_bytes", len(req.Content),
			"values", values,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractFields(ctx, req)
}
