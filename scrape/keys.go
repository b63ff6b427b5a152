package scrape

import (
	"strings"
	"time"

	"github.com/rs/xid"
)

// Key prefixes for the two pipeline writes.
const (
	RawKeyPrefix        = "raw_data"
	StructuredKeyPrefix = "formatted_data"
)

// CatalogKey is where the model list is stored in the catalog namespace.
const CatalogKey = "models"

// KeyGenerator produces cache keys of the form
// <prefix>_<UTC timestamp>_<xid>. The timestamp is RFC 3339 with
// milliseconds, with ':' and '.' replaced by '-'. The xid suffix keeps keys
// unique for callers that share a clock tick.
type KeyGenerator struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewKey returns a fresh key with the given prefix.
func (g *KeyGenerator) NewKey(prefix string) string {
	now := time.Now
	if g != nil && g.Now != nil {
		now = g.Now
	}
	ts := now().UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return prefix + "_" + ts + "_" + xid.New().String()
}
