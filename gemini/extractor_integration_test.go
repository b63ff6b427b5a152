//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/fieldscrape"
	"github.com/fwojciec/fieldscrape/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFieldExtractor_Integration(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	rec, err := gemini.NewFieldExtractor(client).ExtractFields(ctx, fieldscrape.ExtractionRequest{
		Content: "# Widget X\n\n| Size | Price |\n|---|---|\n| Small | 10 |\n| Large | 12 |",
		Fields:  fieldscrape.FieldList{"title", "price"},
		Model:   gemini.DefaultModel,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"title", "price"}, rec.Fields())
	assert.Contains(t, rec.Values("price"), "12")
}
