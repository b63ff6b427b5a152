package scrape

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/fieldscrape"
)

// Ensure Records implements fieldscrape.RecordService.
var _ fieldscrape.RecordService = (*Records)(nil)

// Records reads structured records back from the cache.
type Records struct {
	Cache fieldscrape.Cache
}

// FindRecord returns the record stored under key.
func (r *Records) FindRecord(ctx context.Context, key string) (*fieldscrape.StructuredRecord, error) {
	if key == "" {
		return nil, fieldscrape.Errorf(fieldscrape.EINVALID, "key is missing")
	}

	data, err := r.Cache.Get(ctx, fieldscrape.NamespaceStructured, key)
	if err != nil {
		if fieldscrape.ErrorCode(err) == fieldscrape.ENOTFOUND {
			return nil, fieldscrape.Errorf(fieldscrape.ENOTFOUND, "no data found for key %q", key)
		}
		return nil, cacheError(err, "read record %s", key)
	}

	var rec fieldscrape.StructuredRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "decode record %s", key)
	}
	return &rec, nil
}

// ExportRecord renders the record stored under key in format.
func (r *Records) ExportRecord(ctx context.Context, key string, format fieldscrape.ExportFormat) ([]byte, error) {
	if _, err := fieldscrape.ParseExportFormat(string(format)); err != nil {
		return nil, err
	}
	rec, err := r.FindRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	return format.Format(rec)
}
