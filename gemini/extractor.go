// Package gemini implements fieldscrape.FieldExtractor using Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/fieldscrape"
	"google.golang.org/genai"
)

// DefaultModel is used when the extraction request names no model.
const DefaultModel = "gemini-2.5-flash"

// Ensure FieldExtractor implements fieldscrape.FieldExtractor at compile time.
var _ fieldscrape.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor implements fieldscrape.FieldExtractor using Google Gemini.
type FieldExtractor struct {
	client *genai.Client
}

// NewFieldExtractor creates a new FieldExtractor.
func NewFieldExtractor(client *genai.Client) *FieldExtractor {
	return &FieldExtractor{client: client}
}

// ExtractFields asks Gemini for a JSON object holding req.Fields.
func (e *FieldExtractor) ExtractFields(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error) {
	if err := req.Fields.Validate(); err != nil {
		return nil, err
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(fieldscrape.ExtractionPrompt(req), genai.RoleUser)},
		BuildConfig(),
	)
	if err != nil {
		return nil, fieldscrape.ExtractionFailed(err, "gemini %s", model)
	}
	if result == nil {
		return nil, fieldscrape.Errorf(fieldscrape.EEXTRACT, "gemini returned nil result")
	}

	return fieldscrape.DecodeExtraction(req.Fields, result.Text())
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
// Replies are constrained to JSON.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: fieldscrape.ExtractionInstruction}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}
