package fieldscrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

// DefaultModel is the model identifier used when a request names none.
const DefaultModel = "llama3.1"

// ExtractionRequest is the input to one extraction call.
// It is built and consumed within a single pipeline run and never persisted.
type ExtractionRequest struct {
	Content string    `json:"content"`
	Fields  FieldList `json:"fields"`
	Model   string    `json:"model"`
}

// Validate returns an error if the request cannot be sent.
func (r *ExtractionRequest) Validate() error {
	if err := r.Fields.Validate(); err != nil {
		return err
	}
	if r.Model == "" {
		return Errorf(EINVALID, "model required")
	}
	return nil
}

// FieldExtractor asks a language-model service to pull field values out of
// page content.
type FieldExtractor interface {
	// ExtractFields returns a record whose keys are exactly req.Fields.
	// Returns EEXTRACT when the service reports an error and ETIMEOUT when
	// the call exceeds its deadline.
	ExtractFields(ctx context.Context, req ExtractionRequest) (*StructuredRecord, error)
}

// ExtractionInstruction is the system instruction given to chat models.
const ExtractionInstruction = "You extract data from web page content. " +
	"Reply with a single JSON object and nothing else. " +
	"Use exactly the requested field names as keys. " +
	"Each value must be an array of strings holding every value found for that field, in page order. " +
	"Use an empty array when a field is not present. Do not invent values."

// ExtractionPrompt builds the user prompt for chat-model extractors.
func ExtractionPrompt(req ExtractionRequest) string {
	var sb strings.Builder
	sb.WriteString("<fields>\n")
	for _, name := range req.Fields.Unique() {
		fmt.Fprintf(&sb, "<field>%s</field>\n", name)
	}
	sb.WriteString("</fields>\n\n")
	sb.WriteString("<content>\n")
	sb.WriteString(req.Content)
	sb.WriteString("\n</content>\n\n")
	sb.WriteString("Extract the fields listed above from the content and answer with the JSON object.")
	return sb.String()
}

// DecodeExtraction parses a chat model's reply into a record for fields.
// Markdown code fences and prose around the JSON object are tolerated.
// Returns EEXTRACT if no JSON object can be decoded.
func DecodeExtraction(fields FieldList, reply string) (*StructuredRecord, error) {
	text := strings.TrimSpace(reply)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, Errorf(EEXTRACT, "model reply contains no JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, WrapError(EEXTRACT, err, "model reply is not valid JSON")
	}
	return NormalizeRecord(fields, v), nil
}

// ExtractionFailed wraps a failed model call as ETIMEOUT when err is a
// deadline or network timeout, and as EEXTRACT otherwise.
func ExtractionFailed(err error, format string, args ...any) error {
	if IsTimeout(err) {
		return WrapError(ETIMEOUT, err, format, args...)
	}
	return WrapError(EEXTRACT, err, format, args...)
}

// IsTimeout reports whether err is a context deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
