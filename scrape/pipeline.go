// Package scrape orchestrates the fieldscrape pipeline: fetching a page,
// caching its content, extracting fields, and caching the resulting record.
// It also holds the services built on the cache: record retrieval and the
// model catalog.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// Default per-step timeouts.
const (
	DefaultFetchTimeout   = 60 * time.Second
	DefaultCacheTimeout   = 10 * time.Second
	DefaultExtractTimeout = 5 * time.Minute
)

// Ensure Pipeline implements fieldscrape.Scraper.
var _ fieldscrape.Scraper = (*Pipeline)(nil)

// ProgressEvent reports a state transition of a pipeline run.
type ProgressEvent struct {
	State fieldscrape.State
	URL   string

	// Key is the cache key written in the step, if any.
	Key string

	// Err is set on transitions to StateFailed.
	Err error
}

// ProgressFunc is a callback for observing pipeline runs.
type ProgressFunc func(event ProgressEvent)

// Pipeline runs one scrape request through fetch, raw caching, extraction,
// and structured caching. Runs are sequential; a Pipeline is safe for
// concurrent use when its collaborators are.
type Pipeline struct {
	Content   fieldscrape.ContentFetcher
	Cache     fieldscrape.Cache
	Extractor fieldscrape.FieldExtractor
	Keys      *KeyGenerator

	// DefaultModel is used when a request names no model.
	// Falls back to fieldscrape.DefaultModel.
	DefaultModel string

	// Per-step timeouts. Zero selects the package default.
	FetchTimeout   time.Duration
	CacheTimeout   time.Duration
	ExtractTimeout time.Duration

	Progress ProgressFunc
}

// Scrape executes the pipeline for req.
//
// Validation happens before any I/O. A failed step ends the run; nothing
// written by earlier steps is rolled back. The returned record is the one
// read back from the cache.
func (p *Pipeline) Scrape(ctx context.Context, req fieldscrape.ScrapeRequest) (*fieldscrape.ScrapeResult, error) {
	p.emit(ProgressEvent{State: fieldscrape.StateIdle, URL: req.URL})

	if err := req.Validate(); err != nil {
		return nil, p.fail(req.URL, err)
	}

	p.emit(ProgressEvent{State: fieldscrape.StateFetching, URL: req.URL})
	content, err := p.fetch(ctx, req.URL)
	if err != nil {
		return nil, p.fail(req.URL, err)
	}

	rawKey := p.Keys.NewKey(RawKeyPrefix)
	p.emit(ProgressEvent{State: fieldscrape.StateCachingRaw, URL: req.URL, Key: rawKey})
	stored, err := p.cacheRaw(ctx, rawKey, content)
	if err != nil {
		return nil, p.fail(req.URL, err)
	}

	model := p.model(req.Model)
	p.emit(ProgressEvent{State: fieldscrape.StateExtracting, URL: req.URL})
	rec, err := p.extract(ctx, fieldscrape.ExtractionRequest{
		Content: stored.Content,
		Fields:  req.Fields,
		Model:   model,
	})
	if err != nil {
		return nil, p.fail(req.URL, err)
	}

	key := p.Keys.NewKey(StructuredKeyPrefix)
	p.emit(ProgressEvent{State: fieldscrape.StateCachingStructured, URL: req.URL, Key: key})
	cached, err := p.cacheRecord(ctx, key, rec)
	if err != nil {
		return nil, p.fail(req.URL, err)
	}

	p.emit(ProgressEvent{State: fieldscrape.StateDone, URL: req.URL, Key: key})
	return &fieldscrape.ScrapeResult{
		Record: cached,
		Key:    key,
		RawKey: rawKey,
		Model:  model,
	}, nil
}

func (p *Pipeline) fetch(ctx context.Context, url string) (*fieldscrape.RawContent, error) {
	ctx, cancel := withTimeout(ctx, p.FetchTimeout, DefaultFetchTimeout)
	defer cancel()

	content, err := p.Content.Fetch(ctx, url)
	if err != nil {
		return nil, fetchError(err, "fetch %s", url)
	}
	return content, nil
}

func (p *Pipeline) cacheRaw(ctx context.Context, key string, content *fieldscrape.RawContent) (*fieldscrape.RawContent, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "encode raw content")
	}

	got, err := p.putVerified(ctx, fieldscrape.NamespaceRaw, key, data)
	if err != nil {
		return nil, err
	}

	var stored fieldscrape.RawContent
	if err := json.Unmarshal(got, &stored); err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "decode raw content %s", key)
	}
	return &stored, nil
}

func (p *Pipeline) extract(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error) {
	ctx, cancel := withTimeout(ctx, p.ExtractTimeout, DefaultExtractTimeout)
	defer cancel()

	rec, err := p.Extractor.ExtractFields(ctx, req)
	if err != nil {
		switch {
		case fieldscrape.ErrorCode(err) == fieldscrape.ETIMEOUT:
			return nil, err
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fieldscrape.WrapError(fieldscrape.ETIMEOUT, err, "extraction timed out")
		case fieldscrape.ErrorCode(err) == fieldscrape.EEXTRACT:
			return nil, err
		}
		return nil, fieldscrape.WrapError(fieldscrape.EEXTRACT, err, "extract fields")
	}
	if rec == nil {
		rec = fieldscrape.NewRecord(req.Fields)
	}
	// Extractors are external; hold them to the requested key set.
	return fieldscrape.NormalizeRecord(req.Fields, rec.Map()), nil
}

func (p *Pipeline) cacheRecord(ctx context.Context, key string, rec *fieldscrape.StructuredRecord) (*fieldscrape.StructuredRecord, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "encode record")
	}

	got, err := p.putVerified(ctx, fieldscrape.NamespaceStructured, key, data)
	if err != nil {
		return nil, err
	}

	var cached fieldscrape.StructuredRecord
	if err := json.Unmarshal(got, &cached); err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "decode record %s", key)
	}
	return &cached, nil
}

// putVerified writes data and reads it back. Any failure, including a
// read-back that differs from what was written, is ECACHE.
func (p *Pipeline) putVerified(ctx context.Context, ns fieldscrape.Namespace, key string, data []byte) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, p.CacheTimeout, DefaultCacheTimeout)
	defer cancel()

	if err := p.Cache.Put(ctx, ns, key, data); err != nil {
		return nil, cacheError(err, "store %s/%s", ns, key)
	}
	got, err := p.Cache.Get(ctx, ns, key)
	if err != nil {
		return nil, cacheError(err, "read back %s/%s", ns, key)
	}
	if !bytes.Equal(got, data) {
		return nil, fieldscrape.Errorf(fieldscrape.ECACHE, "read back of %s/%s does not match what was written", ns, key)
	}
	return got, nil
}

func (p *Pipeline) model(requested string) string {
	if requested != "" {
		return requested
	}
	if p.DefaultModel != "" {
		return p.DefaultModel
	}
	return fieldscrape.DefaultModel
}

func (p *Pipeline) emit(event ProgressEvent) {
	if p.Progress != nil {
		p.Progress(event)
	}
}

func (p *Pipeline) fail(url string, err error) error {
	p.emit(ProgressEvent{State: fieldscrape.StateFailed, URL: url, Err: err})
	return err
}

func cacheError(err error, format string, args ...any) error {
	if fieldscrape.ErrorCode(err) == fieldscrape.ECACHE {
		return err
	}
	return fieldscrape.WrapError(fieldscrape.ECACHE, err, format, args...)
}

func withTimeout(ctx context.Context, d, fallback time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = fallback
	}
	return context.WithTimeout(ctx, d)
}
