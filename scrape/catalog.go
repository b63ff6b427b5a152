package scrape

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/fieldscrape"
)

// DefaultCatalogURL is the model library page the catalog is built from.
const DefaultCatalogURL = "https://ollama.com/library"

// Ensure Catalog implements fieldscrape.ModelCatalog.
var _ fieldscrape.ModelCatalog = (*Catalog)(nil)

// ModelParser extracts model identifiers from a library page.
type ModelParser func(html string) ([]string, error)

// Catalog keeps the list of selectable models in the catalog namespace.
type Catalog struct {
	Fetcher fieldscrape.Fetcher
	Cache   fieldscrape.Cache
	Parse   ModelParser

	// URL is the library page. Defaults to DefaultCatalogURL.
	URL string
}

// Models returns the stored model list. A missing list is empty, not an error.
func (c *Catalog) Models(ctx context.Context) ([]string, error) {
	data, err := c.Cache.Get(ctx, fieldscrape.NamespaceCatalog, CatalogKey)
	if fieldscrape.ErrorCode(err) == fieldscrape.ENOTFOUND {
		return []string{}, nil
	}
	if err != nil {
		return nil, cacheError(err, "read model list")
	}

	models := []string{}
	if len(data) == 0 {
		return models, nil
	}
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.ECACHE, err, "decode model list")
	}
	return models, nil
}

// Refresh scrapes the library page and replaces the stored model list.
// The previous list is kept if scraping fails.
func (c *Catalog) Refresh(ctx context.Context) ([]string, error) {
	url := c.URL
	if url == "" {
		url = DefaultCatalogURL
	}

	html, err := c.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fetchError(err, "fetch model library %s", url)
	}

	models, err := c.Parse(html)
	if err != nil {
		return nil, fetchError(err, "parse model library %s", url)
	}
	if models == nil {
		models = []string{}
	}

	data, err := json.Marshal(models)
	if err != nil {
		return nil, fieldscrape.WrapError(fieldscrape.EINTERNAL, err, "encode model list")
	}
	if err := c.Cache.Put(ctx, fieldscrape.NamespaceCatalog, CatalogKey, data); err != nil {
		return nil, cacheError(err, "store model list")
	}
	return models, nil
}
