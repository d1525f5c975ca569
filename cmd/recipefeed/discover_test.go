package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes a seed file from a paginated chef page", func(t *testing.T) {
		t.Parallel()

		// Given: a chef page spread over two listing pages
		mux := http.NewServeMux()
		mux.HandleFunc("/chefs/nancy-silverton", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `<a href="/recipes/focaccia/">Focaccia</a>
<a href="/gallery/pizza-ideas/">Gallery</a>`)
				return
			}
			fmt.Fprint(w, `<a href="/recipes/short-ribs/">Ribs</a>
<a href="/recipes/focaccia/">Focaccia</a>
<a href="/chefs/nancy-silverton?page=2" rel="next">Next</a>`)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		chefURL := srv.URL + "/chefs/nancy-silverton"
		output := filepath.Join(t.TempDir(), "seeds.json")

		// When: discovering recipes
		err := newTestMain().Run(context.Background(), []string{
			"discover", chefURL, output, "--rate-limit", "1ms",
		}, &bytes.Buffer{}, &bytes.Buffer{})

		// Then: each recipe is written once with its metadata
		require.NoError(t, err)
		seeds, err := fs.NewSeedFile().LoadSeeds(context.Background(), output)
		require.NoError(t, err)
		require.Len(t, seeds, 2)
		assert.Equal(t, srv.URL+"/recipes/short-ribs/", seeds[0].URL)
		assert.Equal(t, srv.URL+"/recipes/focaccia/", seeds[1].URL)
		assert.Equal(t, "Nancy Silverton", seeds[0].Metadata.String("author"))
		assert.Equal(t, "short-ribs", seeds[0].Metadata.String("slug"))
		assert.Equal(t, "Food & Wine", seeds[0].Metadata.String("source"))
		assert.Equal(t, chefURL, seeds[0].Metadata.String("chef_page"))
		assert.Equal(t, "2", seeds[1].Metadata.String("extraction_order"))
	})

	t.Run("a listing without recipes is not found", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<a href="/about/">About</a>`)
		}))
		t.Cleanup(srv.Close)

		output := filepath.Join(t.TempDir(), "seeds.json")
		err := newTestMain().Run(context.Background(), []string{
			"discover", srv.URL + "/chefs/nobody", output, "--rate-limit", "1ms",
		}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, recipefeed.ENOTFOUND, recipefeed.ErrorCode(err))
		assert.NoFileExists(t, output)
	})

	t.Run("rejects a relative listing URL", func(t *testing.T) {
		t.Parallel()

		err := newTestMain().Run(context.Background(), []string{
			"discover", "chefs/nancy-silverton", filepath.Join(t.TempDir(), "seeds.json"),
		}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, recipefeed.EINVALID, recipefeed.ErrorCode(err))
	})
}
