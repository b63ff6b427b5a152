package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// DefaultExtractEndpoint is the extraction service address.
const DefaultExtractEndpoint = "http://localhost:11400/extract"

// DefaultExtractTimeout bounds one extraction call. Local models on modest
// hardware routinely take minutes.
const DefaultExtractTimeout = 5 * time.Minute

// Ensure FieldExtractor implements fieldscrape.FieldExtractor.
var _ fieldscrape.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor calls an extraction service over HTTP.
//
// The service receives {"content", "fields", "model"} and answers with a JSON
// object mapping field names to values. Errors are reported either with a
// non-2xx status or as {"error": "..."}.
type FieldExtractor struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

// ExtractorOption configures a FieldExtractor.
type ExtractorOption func(*FieldExtractor)

// WithEndpoint sets the service URL.
func WithEndpoint(u string) ExtractorOption {
	return func(e *FieldExtractor) {
		e.endpoint = u
	}
}

// WithExtractTimeout sets the per-call timeout.
func WithExtractTimeout(d time.Duration) ExtractorOption {
	return func(e *FieldExtractor) {
		e.timeout = d
	}
}

// WithHTTPClient sets the client used for service calls.
func WithHTTPClient(c *http.Client) ExtractorOption {
	return func(e *FieldExtractor) {
		e.client = c
	}
}

// NewFieldExtractor creates a FieldExtractor for the extraction service.
func NewFieldExtractor(opts ...ExtractorOption) *FieldExtractor {
	e := &FieldExtractor{
		endpoint: DefaultExtractEndpoint,
		client:   http.DefaultClient,
		timeout:  DefaultExtractTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type extractRequest struct {
	Content string   `json:"content"`
	Fields  []string `json:"fields"`
	Model   string   `json:"model"`
}

// ExtractFields sends req to the service and normalizes its answer.
func (e *FieldExtractor) ExtractFields(ctx context.Context, req fieldscrape.ExtractionRequest) (*fieldscrape.StructuredRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(extractRequest{
		Content: req.Content,
		Fields:  req.Fields.Unique(),
		Model:   req.Model,
	})
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "encode extraction request")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.EINVALID, err, "build extraction request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fieldscrape.ExtractionFailed(err, "call extraction service")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fieldscrape.ExtractionFailed(err, "read extraction response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serviceError(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fieldscrape.Errorf(fieldscrape.EEXTRACT, "extraction service returned %d: %s", resp.StatusCode, msg)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.EEXTRACT, err, "extraction service returned invalid JSON")
	}

	if m, ok := payload.(map[string]any); ok && !hasRequestedField(m, req.Fields) {
		if msg, ok := m["error"].(string); ok && msg != "" {
			return nil, fieldscrape.Errorf(fieldscrape.EEXTRACT, "extraction service: %s", msg)
		}
	}

	return fieldscrape.NormalizeRecord(req.Fields, payload), nil
}

// serviceError returns the "error" member of a JSON error body, or the
// trimmed body itself.
func serviceError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func hasRequestedField(m map[string]any, fields fieldscrape.FieldList) bool {
	for _, f := range fields {
		if _, ok := m[f]; ok {
			return true
		}
	}
	return false
}
