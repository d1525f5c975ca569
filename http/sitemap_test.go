package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/recipefeed"
	rfhttp "github.com/fwojciec/recipefeed/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestSitemapService_DiscoverURLs_FromRobotsTxt(t *testing.T) {
	t.Parallel()

	robotsTxt := `User-agent: *
Disallow: /private/
Sitemap: {{BASE}}/sitemap.xml
`
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/recipes/braised-short-ribs</loc></url>
  <url><loc>{{BASE}}/recipes/focaccia</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":  robotsTxt,
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/recipes/braised-short-ribs",
		srv.URL + "/recipes/focaccia",
	}, urls)
}

func TestSitemapService_DiscoverURLs_FallbackToSitemapXML(t *testing.T) {
	t.Parallel()

	// No robots.txt, should fallback to /sitemap.xml
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/recipes/polenta</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/recipes/polenta"}, urls)
}

func TestSitemapService_DiscoverURLs_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-recipes.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-articles.xml</loc></sitemap>
</sitemapindex>`

	sitemapRecipes := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/recipes/risotto</loc></url>
</urlset>`

	sitemapArticles := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/articles/knife-skills</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml":          sitemapIndex,
		"/sitemap-recipes.xml":  sitemapRecipes,
		"/sitemap-articles.xml": sitemapArticles,
	})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/recipes/risotto",
		srv.URL + "/articles/knife-skills",
	}, urls)
}

func TestSitemapService_DiscoverURLs_AppliesPattern(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/recipes/risotto</loc></url>
  <url><loc>{{BASE}}/recipes/gallery/summer-salads</loc></url>
  <url><loc>{{BASE}}/about</loc></url>
  <url><loc>{{BASE}}/recipes/risotto</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	pattern := &recipefeed.URLPattern{
		Include: []string{"/recipes/"},
		Exclude: []string{"/gallery/"},
	}

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", pattern)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/recipes/risotto"}, urls)
}

func TestSitemapService_DiscoverURLs_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	_, err := svc.DiscoverURLs(ctx, srv.URL, nil)

	require.ErrorIs(t, err, context.Canceled)
}

func TestSitemapService_DiscoverURLs_MultipleSitemapsInRobots(t *testing.T) {
	t.Parallel()

	robotsTxt := `User-agent: *
sitemap: {{BASE}}/sitemap1.xml
Sitemap: {{BASE}}/sitemap2.xml
`
	sitemap1 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	sitemap2 := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page2</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":   robotsTxt,
		"/sitemap1.xml": sitemap1,
		"/sitemap2.xml": sitemap2,
	})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/page1", srv.URL + "/page2"}, urls)
}

func TestSitemapService_DiscoverURLs_NoSitemapFound(t *testing.T) {
	t.Parallel()

	// No robots.txt, no sitemap.xml
	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestSitemapService_DiscoverURLs_ExplicitSitemapMissing(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	_, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	var statusErr *recipefeed.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestSitemapService_DiscoverURLs_MalformedXML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": "<urlset><url><loc>",
	})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	_, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	require.Error(t, err)
	assert.Equal(t, recipefeed.EPARSE, recipefeed.ErrorCode(err))
}

// newTestServer creates a test HTTP server with the given path->content mapping.
// Content strings may contain {{BASE}} which is replaced with the server URL.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = strings.ReplaceAll(body, "{{BASE}}", srv.URL)

		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(body))
	}))

	return srv
}

func TestSitemapService_DiscoverURLs_PacesSitemapFetches(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-2.xml</loc></sitemap>
</sitemapindex>`
	child := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/recipes/%s</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml":   sitemapIndex,
		"/sitemap-1.xml": strings.Replace(child, "%s", "risotto", 1),
		"/sitemap-2.xml": strings.Replace(child, "%s", "polenta", 1),
	})
	defer srv.Close()

	svc := rfhttp.NewSitemapService(rfhttp.NewFetcher())
	svc.Limiter = rate.NewLimiter(rate.Every(50*time.Millisecond), 1)

	start := time.Now()
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/sitemap.xml", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/recipes/risotto", srv.URL + "/recipes/polenta"}, urls)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond, "three fetches take two intervals")
}
