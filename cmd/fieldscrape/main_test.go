package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	main "github.com/fwojciec/fieldscrape/cmd/fieldscrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head><title>Widget</title><script>var tracking = 1;</script></head>
<body>
<nav>Home | Shop</nav>
<h1>Widget</h1>
<p>Price: $10, or $12 with gift wrap.</p>
</body>
</html>`

// extractionService answers every request with title and price values and
// counts how often it was called.
func extractionService(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Content string   `json:"content"`
			Fields  []string `json:"fields"`
			Model   string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error": "bad request"}`, http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Content, "Price: $10") {
			http.Error(w, `{"error": "content missing"}`, http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title": "Widget", "price": ["$10", "$12"], "unrequested": "x"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/widget" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, productPage)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func endToEndConfig(t *testing.T, extractURL string) string {
	t.Helper()
	return writeConfig(t, fmt.Sprintf(`
cache:
  driver: sqlite
  path: %s
fetch:
  timeout: 5s
extraction:
  provider: service
  endpoint: %s
  timeout: 5s
`, filepath.Join(t.TempDir(), "cache.db"), extractURL))
}

var savedKey = regexp.MustCompile(`Saved as (formatted_data_\S+)`)

func TestMain_Run_ScrapeViewExport(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	extract := extractionService(t, &calls)
	page := pageServer(t)
	cfgPath := endToEndConfig(t, extract.URL+"/extract")

	// Scrape.
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "scrape", page.URL + "/widget", "--fields", "title, price"},
		stdout, stderr)
	require.NoError(t, err, stderr.String())
	assert.JSONEq(t, `{"title": ["Widget"], "price": ["$10", "$12"]}`, stdout.String())
	assert.Equal(t, int32(1), calls.Load())

	m := savedKey.FindStringSubmatch(stderr.String())
	require.Len(t, m, 2, stderr.String())
	key := m[1]

	// View reads the cached record without calling the service again.
	stdout.Reset()
	stderr.Reset()
	err = main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "view", key},
		stdout, stderr)
	require.NoError(t, err, stderr.String())
	assert.JSONEq(t, `{"title": ["Widget"], "price": ["$10", "$12"]}`, stdout.String())
	assert.Equal(t, int32(1), calls.Load())

	// Export writes results.csv with padded rows.
	outDir := t.TempDir()
	stdout.Reset()
	stderr.Reset()
	err = main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "export", key, "--format", "csv", "--out", outDir},
		stdout, stderr)
	require.NoError(t, err, stderr.String())

	b, err := os.ReadFile(filepath.Join(outDir, "results.csv"))
	require.NoError(t, err)
	assert.Equal(t, "title,price\nWidget,$10\n,$12\n", string(b))
}

func TestMain_Run_ScrapeFetchFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	extract := extractionService(t, &calls)
	page := pageServer(t)
	cfgPath := endToEndConfig(t, extract.URL+"/extract")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "scrape", page.URL + "/missing", "--fields", "title"},
		stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "error:")
	assert.Empty(t, stdout.String())
	assert.Equal(t, int32(0), calls.Load())
}

func TestMain_Run_ViewUnknownKey(t *testing.T) {
	t.Parallel()

	cfgPath := endToEndConfig(t, "http://127.0.0.1:1/extract")

	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "view", "formatted_data_unknown"},
		&bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "error:")
}

func TestMain_Run_ModelsEmptyCatalog(t *testing.T) {
	t.Parallel()

	cfgPath := endToEndConfig(t, "http://127.0.0.1:1/extract")

	stdout := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "models"},
		stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No models found")
}

func TestMain_Run_BadConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "cache:\n  driver: redis\n")

	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(),
		[]string{"--config", cfgPath, "models"},
		&bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, stderr.String(), "Hint:")
}
