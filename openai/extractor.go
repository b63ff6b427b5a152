// Package openai implements fieldscrape.FieldExtractor against any
// OpenAI-compatible chat completions API, including a local Ollama server.
package openai

import (
	"context"

	"github.com/fwojciec/fieldscrape"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama server.
const OllamaBaseURL = "http://localhost:11434/v1/"

// Ensure FieldExtractor implements fieldscrape.FieldExtractor at compile time.
var _ fieldscrape.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor implements fieldscrape.FieldExtractor with chat completions.
type FieldExtractor struct {
	client   openai.Client
	jsonMode bool
}

// Option configures a FieldExtractor.
type Option func(*FieldExtractor)

// WithoutJSONMode omits the json_object response format for servers that
// reject it. Replies are still decoded as JSON.
func WithoutJSONMode() Option {
	return func(e *FieldExtractor) {
		e.jsonMode = false
	}
}

// NewFieldExtractor creates a FieldExtractor using client.
func NewFieldExtractor(client openai.Client, opts ...Option) *FieldExtractor {
	e := &FieldExtractor{client: client, jsonMode: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewClient builds a client for apiKey and baseURL. An empty baseURL uses
// the OpenAI API; Ollama ignores the key but the SDK requires one.
func NewClient(apiKey, baseURL string, opts ...option.RequestOption) openai.Client {
	if apiKey == "" {
		apiKey = "ollama"
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(append(reqOpts, opts...)...)
}

// ExtractFields asks the chat model for a JSON object holding req.Fields.
func (e *FieldExtractor) ExtractFields(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error) {
	if err := req.Fields.Validate(); err != nil {
		return nil, err
	}
	model := req.Model
	if model == "" {
		model = fieldscrape.DefaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fieldscrape.ExtractionInstruction),
			openai.UserMessage(fieldscrape.ExtractionPrompt(req)),
		},
		Temperature: openai.Float(0),
	}
	if e.jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fieldscrape.ExtractionFailed(err, "chat completion with %s", model)
	}
	if len(resp.Choices) == 0 {
		return nil, fieldscrape.Errorf(fieldscrape.EEXTRACT, "%s returned no choices", model)
	}

	return fieldscrape.DecodeExtraction(req.Fields, resp.Choices[0].Message.Content)
}
