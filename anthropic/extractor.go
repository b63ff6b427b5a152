// Package anthropic implements fieldscrape.FieldExtractor using Claude.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/fieldscrape"
)

// Defaults for extraction calls.
const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 4096
)

// Ensure FieldExtractor implements fieldscrape.FieldExtractor at compile time.
var _ fieldscrape.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor implements fieldscrape.FieldExtractor with the Messages API.
type FieldExtractor struct {
	client    anthropic.Client
	maxTokens int64
}

// Option configures a FieldExtractor.
type Option func(*FieldExtractor)

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int64) Option {
	return func(e *FieldExtractor) {
		e.maxTokens = n
	}
}

// NewClient builds a client for apiKey. Extra options such as a base URL
// are applied after the key.
func NewClient(apiKey string, opts ...option.RequestOption) anthropic.Client {
	return anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
}

// NewFieldExtractor creates a FieldExtractor using client.
func NewFieldExtractor(client anthropic.Client, opts ...Option) *FieldExtractor {
	e := &FieldExtractor{client: client, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFields asks Claude for a JSON object holding req.Fields.
func (e *FieldExtractor) ExtractFields(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error) {
	if err := req.Fields.Validate(); err != nil {
		return nil, err
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   e.maxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: fieldscrape.ExtractionInstruction}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fieldscrape.ExtractionPrompt(req))),
		},
	})
	if err != nil {
		return nil, fieldscrape.ExtractionFailed(err, "claude %s", model)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fieldscrape.Errorf(fieldscrape.EEXTRACT, "claude %s returned no text", model)
	}

	return fieldscrape.DecodeExtraction(req.Fields, text.String())
}
