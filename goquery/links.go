package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/fieldscrape"
)

// ModelLinkSelector matches model entries on the library page.
const ModelLinkSelector = `a[href^="/library/"]`

// ParseModelNames extracts model identifiers from a model library page.
// Each matching link contributes the path segment after /library/; names
// are returned in document order without duplicates.
func ParseModelNames(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fieldscrape.Errorf(fieldscrape.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	models := []string{}
	doc.Find(ModelLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || isNonHTTPLink(href) {
			return
		}
		name := modelName(href)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		models = append(models, name)
	})

	return models, nil
}

// modelName returns the first path segment after /library/, dropping any
// query, fragment, or tag suffix path.
func modelName(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	rest := strings.TrimPrefix(u.Path, "/library/")
	if rest == u.Path {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return strings.TrimSpace(name)
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
