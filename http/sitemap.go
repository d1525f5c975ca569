package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/recipefeed"
	"golang.org/x/time/rate"
)

// Ensure SitemapService implements recipefeed.URLSource.
var _ recipefeed.URLSource = (*SitemapService)(nil)

// SitemapService discovers recipe URLs from website sitemaps.
type SitemapService struct {
	fetcher recipefeed.Fetcher

	// Limiter paces sitemap fetches, which matters for sitemap indexes
	// listing many child sitemaps. Nil fetches without pacing.
	Limiter *rate.Limiter
}

// NewSitemapService creates a new SitemapService that fetches through f.
func NewSitemapService(f recipefeed.Fetcher) *SitemapService {
	return &SitemapService{fetcher: f}
}

// DiscoverURLs returns every sitemap URL matching pattern, in document
// order without duplicates.
//
// If sitemapURL points at robots.txt or a site root, sitemap locations are
// read from robots.txt and /sitemap.xml is used as a fallback. Sitemap
// indexes are resolved recursively.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, pattern *recipefeed.URLPattern) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(sitemapURL)
	if err != nil {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "invalid sitemap URL: %v", err)
	}

	var (
		sitemapURLs []string
		fallback    bool
	)
	if strings.HasSuffix(base.Path, ".xml") {
		sitemapURLs = []string{sitemapURL}
	} else {
		sitemapURLs, fallback, err = s.findSitemapURLs(ctx, base)
		if err != nil {
			return nil, err
		}
	}

	var urls []string
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, sm := range sitemapURLs {
		found, err := s.processSitemap(ctx, sm, seenSitemaps)
		var statusErr *recipefeed.StatusError
		if fallback && errors.As(err, &statusErr) && statusErr.NotFound() {
			// Site has no sitemap at the conventional location.
			return []string{}, nil
		}
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if seenURLs[u] || !pattern.Match(u) {
				continue
			}
			seenURLs[u] = true
			urls = append(urls, u)
		}
	}

	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// findSitemapURLs reads Sitemap: directives from robots.txt, falling back
// to /sitemap.xml. The boolean reports whether the fallback was used.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, bool, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	body, err := recipefeed.FetchHTML(ctx, s.fetcher, robotsURL.String())
	if err == nil {
		if sitemaps := parseRobots(body); len(sitemaps) > 0 {
			return sitemaps, false, nil
		}
	} else if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	return []string{base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, true, nil
}

func parseRobots(body string) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Case-insensitive check for Sitemap: directive
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Avoid processing the same sitemap twice
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := recipefeed.FetchHTML(ctx, s.fetcher, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetching sitemap %s: %w", sitemapURL, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "parsing sitemap XML %s: %v", sitemapURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "empty sitemap XML %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		var urls []string
		for _, loc := range locs(root, "sitemap") {
			found, err := s.processSitemap(ctx, loc, seen)
			if err != nil {
				return nil, err
			}
			urls = append(urls, found...)
		}
		return urls, nil
	}

	return locs(root, "url"), nil
}

// locs returns the <loc> text of every child element named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}
