package goquery_test

import (
	"testing"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ recipefeed.ListingParser = (*goquery.ListingParser)(nil)

func TestListingParser_ParseListing(t *testing.T) {
	t.Parallel()

	const pageURL = "https://www.foodandwine.com/chefs/nancy-silverton"

	t.Run("resolves links in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/recipes/braised-short-ribs">Short ribs</a>
<a href="https://www.foodandwine.com/recipes/focaccia#comments">Focaccia</a>
<a href="mailto:chef@example.com">Mail</a>
<a href="javascript:void(0)">Menu</a>
<a href="/recipes/braised-short-ribs">Short ribs again</a>
</body></html>`

		page, err := goquery.NewListingParser().ParseListing(html, pageURL)

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://www.foodandwine.com/recipes/braised-short-ribs",
			"https://www.foodandwine.com/recipes/focaccia",
			"https://www.foodandwine.com/recipes/braised-short-ribs",
		}, page.Links)
		assert.False(t, page.HasNext)
	})

	t.Run("detects rel next", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/recipes/a">A</a><a rel="next" href="?page=2">›</a></body></html>`

		page, err := goquery.NewListingParser().ParseListing(html, pageURL)

		require.NoError(t, err)
		assert.True(t, page.HasNext)
		assert.Equal(t, pageURL+"?page=2", page.NextURL)
	})

	t.Run("detects link rel next in head", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><link rel="next" href="https://www.foodandwine.com/chefs/nancy-silverton/2"></head><body></body></html>`

		page, err := goquery.NewListingParser().ParseListing(html, pageURL)

		require.NoError(t, err)
		assert.True(t, page.HasNext)
		assert.Equal(t, "https://www.foodandwine.com/chefs/nancy-silverton/2", page.NextURL)
	})

	t.Run("detects Next anchor text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/recipes/a">A</a><a href="#"> Next </a></body></html>`

		page, err := goquery.NewListingParser().ParseListing(html, pageURL)

		require.NoError(t, err)
		assert.True(t, page.HasNext)
		assert.Empty(t, page.NextURL)
	})

	t.Run("detects next class", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a class="pagination__Next-button" href="/chefs/nancy-silverton?page=3">›</a></body></html>`

		page, err := goquery.NewListingParser().ParseListing(html, pageURL)

		require.NoError(t, err)
		assert.True(t, page.HasNext)
		assert.Equal(t, pageURL+"?page=3", page.NextURL)
	})

	t.Run("returns empty links for a page without anchors", func(t *testing.T) {
		t.Parallel()

		page, err := goquery.NewListingParser().ParseListing(`<html><body><p>Nothing here</p></body></html>`, pageURL)

		require.NoError(t, err)
		assert.Empty(t, page.Links)
		assert.False(t, page.HasNext)
	})

	t.Run("rejects an invalid page URL", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewListingParser().ParseListing(`<html></html>`, "://bad")

		require.Error(t, err)
		assert.Equal(t, recipefeed.EINVALID, recipefeed.ErrorCode(err))
	})
}
