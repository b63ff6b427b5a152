package goquery_test

import (
	"testing"

	"github.com/fwojciec/fieldscrape"
	"github.com/fwojciec/fieldscrape/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head>
	<title>Widget X | Shop</title>
	<style>.price { color: red }</style>
	<script>window.track = true;</script>
</head>
<body>
	<nav><a href="/">Home</a></nav>
	<!-- promo banner -->
	<main>
		<h1>Widget X</h1>
		<table>
			<tr><th>Size</th><th>Price</th></tr>
			<tr><td>S</td><td class="price">10</td></tr>
			<tr><td>L</td><td class="price">12</td></tr>
		</table>
		<div hidden>secret</div>
	</main>
	<footer>Copyright</footer>
	<noscript>Enable JS</noscript>
</body>
</html>`

func TestCleaner_Extract(t *testing.T) {
	t.Parallel()

	t.Run("removes noise and keeps data", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewCleaner().Extract(productPage, "https://shop.example/w")

		require.NoError(t, err)
		assert.Equal(t, "Widget X | Shop", result.Title)
		assert.Contains(t, result.ContentHTML, "<h1>Widget X</h1>")
		assert.Contains(t, result.ContentHTML, `<td class="price">12</td>`)
		assert.NotContains(t, result.ContentHTML, "window.track")
		assert.NotContains(t, result.ContentHTML, "color: red")
		assert.NotContains(t, result.ContentHTML, "promo banner")
		assert.NotContains(t, result.ContentHTML, "secret")
		assert.NotContains(t, result.ContentHTML, "Enable JS")
		assert.Contains(t, result.ContentHTML, "Copyright", "layout is kept by default")
	})

	t.Run("removes layout when asked", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewCleaner(goquery.WithoutLayout()).Extract(productPage, "")

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Copyright")
		assert.NotContains(t, result.ContentHTML, "Home")
		assert.Contains(t, result.ContentHTML, "Widget X")
	})

	t.Run("removes custom selectors", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewCleaner(goquery.WithSelectors("table")).Extract(productPage, "")

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "<table>")
	})

	t.Run("falls back to first heading for title", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewCleaner().Extract(`<html><body><h1>  Only   Heading </h1></body></html>`, "")

		require.NoError(t, err)
		assert.Equal(t, "Only Heading", result.Title)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewCleaner().Extract("   ", "")

		require.Error(t, err)
		assert.Equal(t, fieldscrape.EINVALID, fieldscrape.ErrorCode(err))
	})
}
