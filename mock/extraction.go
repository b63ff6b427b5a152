package mock

import (
	"context"

	"github.com/fwojciec/fieldscrape"
)

var _ fieldscrape.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor is a mock implementation of fieldscrape.FieldExtractor.
type FieldExtractor struct {
	ExtractFieldsFn func(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error)
}

func (e *FieldExtractor) ExtractFields(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error) {
	return e.ExtractFieldsFn(ctx, req)
}
