package fieldscrape

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// RawContent is the normalized text fetched from a URL.
// It is immutable once created.
type RawContent struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// NewRawContent returns RawContent for url stamped with the current time and
// a hash of content.
func NewRawContent(url, title, content string) *RawContent {
	return &RawContent{
		URL:         url,
		Title:       title,
		Content:     content,
		ContentHash: HashContent(content),
		FetchedAt:   time.Now().UTC(),
	}
}

// HashContent computes the xxHash of content and returns it as 16 hex digits.
func HashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// ContentFetcher retrieves a page and normalizes it into RawContent.
// Implementations hide the choice of HTTP vs. browser rendering and of the
// noise-stripping strategy.
type ContentFetcher interface {
	// Fetch retrieves and normalizes the page at url.
	// Returns EFETCH if the page cannot be retrieved or normalized.
	Fetch(ctx context.Context, url string) (*RawContent, error)
}
