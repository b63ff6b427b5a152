// Package goquery implements HTML processing on top of goquery: a noise
// stripping fieldscrape.Extractor and the model library page parser.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/fieldscrape"
)

// DefaultNoiseSelectors match elements that never carry page data.
var DefaultNoiseSelectors = []string{
	"script",
	"style",
	"noscript",
	"template",
	"iframe",
	"svg",
	"canvas",
	"link",
	"meta",
	"[hidden]",
	"[aria-hidden=true]",
}

// LayoutSelectors match site chrome. Removing them shrinks the content sent
// for extraction but can drop data that lives in headers or footers.
var LayoutSelectors = []string{
	"nav",
	"header",
	"footer",
	"aside",
	"form",
	"[role=navigation]",
	"[role=banner]",
	"[role=contentinfo]",
}

// Ensure Cleaner implements fieldscrape.Extractor at compile time.
var _ fieldscrape.Extractor = (*Cleaner)(nil)

// Cleaner strips scripts, styles, and other noise from a page and returns
// the remaining body markup. Unlike readability or trafilatura it does not
// guess at a main article, so listings and tables survive intact.
type Cleaner struct {
	selectors []string
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithoutLayout also removes navigation, headers, footers, and sidebars.
func WithoutLayout() CleanerOption {
	return func(c *Cleaner) {
		c.selectors = append(c.selectors, LayoutSelectors...)
	}
}

// WithSelectors removes additional elements matching the given selectors.
func WithSelectors(selectors ...string) CleanerOption {
	return func(c *Cleaner) {
		c.selectors = append(c.selectors, selectors...)
	}
}

// NewCleaner creates a Cleaner that removes DefaultNoiseSelectors plus any
// selectors added by opts.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{selectors: append([]string{}, DefaultNoiseSelectors...)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract removes noise from rawHTML. The title comes from <title>, or the
// first <h1> when the document has none.
func (c *Cleaner) Extract(rawHTML string, _ string) (*fieldscrape.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, fieldscrape.Errorf(fieldscrape.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fieldscrape.Errorf(fieldscrape.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title = normalizeSpace(doc.Find("h1").First().Text())
	}

	doc.Find(strings.Join(c.selectors, ",")).Remove()
	removeComments(doc.Selection)

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	content, err := body.Html()
	if err != nil {
		return nil, err
	}

	return &fieldscrape.ExtractResult{
		Title:       title,
		ContentHTML: strings.TrimSpace(content),
	}, nil
}

func removeComments(sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#comment" {
			s.Remove()
			return
		}
		removeComments(s)
	})
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
