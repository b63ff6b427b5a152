// Package htmltomarkdown implements fieldscrape.Converter with html-to-markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/fieldscrape"
)

// Ensure Converter implements fieldscrape.Converter at compile time.
var _ fieldscrape.Converter = (*Converter)(nil)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	mdImage    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// Converter wraps html-to-markdown to turn extracted HTML into the compact
// text sent for field extraction.
type Converter struct {
	conv       *converter.Converter
	domain     string
	stripLinks bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithDomain resolves relative links and images against domain.
func WithDomain(domain string) Option {
	return func(c *Converter) {
		c.domain = domain
	}
}

// WithoutLinks replaces links with their text and drops images.
func WithoutLinks() Option {
	return func(c *Converter) {
		c.stripLinks = true
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown with runs of blank lines
// collapsed.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", fieldscrape.Errorf(fieldscrape.EINVALID, "empty HTML input")
	}

	var convOpts []converter.ConvertOptionFunc
	if c.domain != "" {
		convOpts = append(convOpts, converter.WithDomain(c.domain))
	}

	md, err := c.conv.ConvertString(html, convOpts...)
	if err != nil {
		return "", fieldscrape.WrapError(fieldscrape.EFETCH, err, "convert HTML to markdown")
	}

	if c.stripLinks {
		md = mdImage.ReplaceAllString(md, "")
		md = mdLink.ReplaceAllString(md, "$1")
	}
	md = blankLines.ReplaceAllString(md, "\n\n")

	return strings.TrimSpace(md), nil
}
