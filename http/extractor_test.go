package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/fieldscrape"
	fshttp "github.com/fwojciec/fieldscrape/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldExtractor_ExtractFields(t *testing.T) {
	t.Parallel()

	t.Run("sends content fields and model", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"title": ["X"], "price": ["10", "12"]}`))
		}))
		defer server.Close()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint(server.URL))

		rec, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "page text",
			Fields:  fieldscrape.FieldList{"title", "price"},
			Model:   "llama3.1",
		})

		require.NoError(t, err)
		assert.Equal(t, "page text", got["content"])
		assert.Equal(t, []any{"title", "price"}, got["fields"])
		assert.Equal(t, "llama3.1", got["model"])
		assert.Equal(t, []string{"X"}, rec.Values("title"))
		assert.Equal(t, []string{"10", "12"}, rec.Values("price"))
	})

	t.Run("omitted field maps to empty list", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"title": ["X"]}`))
		}))
		defer server.Close()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint(server.URL))

		rec, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "page text",
			Fields:  fieldscrape.FieldList{"title", "price"},
			Model:   "llama3.1",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"title", "price"}, rec.Fields())
		assert.Equal(t, []string{}, rec.Values("price"))
	})

	t.Run("returns EEXTRACT with service error message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
		}))
		defer server.Close()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint(server.URL))

		_, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "x",
			Fields:  fieldscrape.FieldList{"title"},
			Model:   "m",
		})

		require.Error(t, err)
		assert.Equal(t, fieldscrape.EEXTRACT, fieldscrape.ErrorCode(err))
		assert.Contains(t, fieldscrape.ErrorMessage(err), "model not loaded")
	})

	t.Run("returns EEXTRACT for error payload with 200 status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "content too long"}`))
		}))
		defer server.Close()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint(server.URL))

		_, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "x",
			Fields:  fieldscrape.FieldList{"title"},
			Model:   "m",
		})

		require.Error(t, err)
		assert.Equal(t, fieldscrape.EEXTRACT, fieldscrape.ErrorCode(err))
		assert.Contains(t, fieldscrape.ErrorMessage(err), "content too long")
	})

	t.Run("error is a regular field when requested", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "E42"}`))
		}))
		defer server.Close()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint(server.URL))

		rec, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "x",
			Fields:  fieldscrape.FieldList{"error"},
			Model:   "m",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"E42"}, rec.Values("error"))
	})

	t.Run("returns EEXTRACT for invalid JSON", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint(server.URL))

		_, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "x",
			Fields:  fieldscrape.FieldList{"title"},
			Model:   "m",
		})

		require.Error(t, err)
		assert.Equal(t, fieldscrape.EEXTRACT, fieldscrape.ErrorCode(err))
	})

	t.Run("returns ETIMEOUT when the service is too slow", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		extractor := fshttp.NewFieldExtractor(
			fshttp.WithEndpoint(server.URL),
			fshttp.WithExtractTimeout(20*time.Millisecond),
		)

		_, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{
			Content: "x",
			Fields:  fieldscrape.FieldList{"title"},
			Model:   "m",
		})

		require.Error(t, err)
		assert.Equal(t, fieldscrape.ETIMEOUT, fieldscrape.ErrorCode(err))
	})

	t.Run("rejects request without fields", func(t *testing.T) {
		t.Parallel()

		extractor := fshttp.NewFieldExtractor(fshttp.WithEndpoint("http://127.0.0.1:1"))

		_, err := extractor.ExtractFields(context.Background(), fieldscrape.ExtractionRequest{Model: "m"})

		require.Error(t, err)
		assert.Equal(t, fieldscrape.EINVALID, fieldscrape.ErrorCode(err))
	})
}
