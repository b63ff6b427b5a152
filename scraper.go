package fieldscrape

import (
	"context"
	"net/url"
	"strings"
)

// State is a step of a pipeline run.
type State int

// Pipeline states, in the order a successful run visits them.
const (
	StateIdle State = iota
	StateFetching
	StateCachingRaw
	StateExtracting
	StateCachingStructured
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateCachingRaw:
		return "caching_raw"
	case StateExtracting:
		return "extracting"
	case StateCachingStructured:
		return "caching_structured"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ScrapeRequest is the inbound pipeline trigger.
type ScrapeRequest struct {
	URL    string    `json:"url"`
	Fields FieldList `json:"fields"`
	Model  string    `json:"model,omitempty"`
}

// Validate returns EINVALID if the URL is missing or not an absolute http(s)
// URL, or if the field list is empty.
func (r *ScrapeRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return Errorf(EINVALID, "URL is missing")
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "URL %q must be an absolute http or https URL", r.URL)
	}
	if len(r.Fields) == 0 {
		return Errorf(EINVALID, "fields are missing")
	}
	return r.Fields.Validate()
}

// ScrapeResult is the outcome of a successful pipeline run.
type ScrapeResult struct {
	// Record is the structured record as read back from the cache.
	Record *StructuredRecord `json:"data"`

	// Key retrieves Record from the structured namespace.
	Key string `json:"key"`

	// RawKey retrieves the fetched content from the raw namespace.
	RawKey string `json:"rawKey"`

	// Model is the model identifier the extraction used.
	Model string `json:"model"`
}

// Scraper runs the scrape, extract, and cache pipeline.
type Scraper interface {
	// Scrape fetches req.URL, extracts req.Fields, caches both results, and
	// returns the cached record with its retrieval key.
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error)
}

// RecordService reads cached structured records.
type RecordService interface {
	// FindRecord returns the record stored under key.
	// Returns ENOTFOUND if no record exists for key.
	FindRecord(ctx context.Context, key string) (*StructuredRecord, error)

	// ExportRecord renders the record stored under key in format.
	// Returns ENOTFOUND if no record exists for key.
	ExportRecord(ctx context.Context, key string, format ExportFormat) ([]byte, error)
}

// ModelCatalog lists the model identifiers available for extraction.
type ModelCatalog interface {
	// Models returns the stored model list, or an empty list if none is stored.
	Models(ctx context.Context) ([]string, error)

	// Refresh rebuilds the stored model list from its source.
	Refresh(ctx context.Context) ([]string, error)
}
