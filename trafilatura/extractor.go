// Package trafilatura implements fieldscrape.Extractor with go-trafilatura.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/fieldscrape"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements fieldscrape.Extractor at compile time.
var _ fieldscrape.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	// IncludeTables keeps table markup in the output. Tabular pages are the
	// common case for field extraction, so NewExtractor enables it.
	IncludeTables bool
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{IncludeTables: true}
}

// Extract processes raw HTML fetched from pageURL and returns the main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*fieldscrape.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, fieldscrape.Errorf(fieldscrape.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		ExcludeTables:  !e.IncludeTables,
	}
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.EFETCH, err, "trafilatura failed for %s", pageURL)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &fieldscrape.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
