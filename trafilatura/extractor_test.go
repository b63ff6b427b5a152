package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/fieldscrape"
	"github.com/fwojciec/fieldscrape/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<!DOCTYPE html>
<html>
<head>
<title>Widgets - Example Shop</title>
<meta property="og:title" content="Widget Catalogue">
</head>
<body>
<nav><a href="/">Home</a><a href="/cart">Cart</a></nav>
<main>
<article>
<h1>Widget Catalogue</h1>
<p>Our widgets come in two sizes and ship within three working days from the central warehouse.</p>
<table>
<tr><th>Size</th><th>Price</th></tr>
<tr><td>Small</td><td>10</td></tr>
<tr><td>Large</td><td>12</td></tr>
</table>
<p>All widgets carry a two year warranty covering manufacturing defects and normal wear of the casing.</p>
</article>
</main>
<aside>Sidebar promotion</aside>
<footer>Copyright 2024 Example Shop</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(listingPage, "https://shop.example/widgets")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(listingPage, "https://shop.example/widgets")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "ship within three working days")
		assert.NotContains(t, result.ContentHTML, "Sidebar promotion")
	})

	t.Run("keeps tables by default", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(listingPage, "https://shop.example/widgets")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Large")
	})

	t.Run("accepts an unparsable page URL", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(listingPage, "::not a url")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "two year warranty")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("", "")

		require.Error(t, err)
		assert.Equal(t, fieldscrape.EINVALID, fieldscrape.ErrorCode(err))
	})
}
