package fieldscrape

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the page content with non-content markup removed.
	ContentHTML string
}

// Extractor strips noise (scripts, styles, navigation, boilerplate) from HTML
// pages so that only the content worth sending to a language model remains.
type Extractor interface {
	// Extract processes raw HTML fetched from pageURL and returns the content.
	Extract(html string, pageURL string) (*ExtractResult, error)
}
