package crawl

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/bloom"
)

// Metadata keys set on seeds found by listing discovery.
const (
	MetaDiscoveryCategory = "discovery_category"
	MetaListingURL        = "listing_url"
)

// Discoverer walks paginated listing pages and collects item URLs.
type Discoverer struct {
	Fetcher     recipefeed.Fetcher
	Parser      recipefeed.ListingParser
	RateLimiter recipefeed.DomainLimiter
	Retry       *RetryPolicy
	Pattern     *recipefeed.URLPattern
	Logger      recipefeed.Logger

	// NewURLSet creates the set used for deduplication. Defaults to a
	// Bloom-filter backed set.
	NewURLSet func() recipefeed.URLSet
}

// Discover walks the listing starting at listingURL and returns the item
// URLs matching the pattern, deduplicated in first-seen order.
//
// The walk stops when a page has no matching links, when a page has no
// next-page affordance or after maxPages pages. If a page cannot be
// fetched the walk stops and the links found so far are returned together
// with the error.
func (d *Discoverer) Discover(ctx context.Context, listingURL string, maxPages int) ([]string, error) {
	if maxPages <= 0 {
		maxPages = recipefeed.DefaultMaxPages
	}

	found := d.newURLSet()
	visited := make(map[string]bool)
	pageURL := listingURL

	for page := 1; page <= maxPages; page++ {
		visited[pageURL] = true
		d.Logger.Info("Fetching listing page", "page", page, "url", pageURL)

		listing, err := d.fetchListing(ctx, pageURL)
		if perr := d.pause(ctx, pageURL); perr != nil {
			return found.List(), perr
		}
		if err != nil {
			return found.List(), fmt.Errorf("listing page %d of %s: %w", page, listingURL, err)
		}

		matched := 0
		for _, link := range listing.Links {
			if !d.Pattern.Match(link) {
				continue
			}
			matched++
			found.Add(link)
		}

		if matched == 0 {
			d.Logger.Warn("No recipe URLs on listing page, stopping", "page", page)
			break
		}
		d.Logger.Success("Found recipe URLs", "page", page, "count", matched)

		if !listing.HasNext {
			if page == 1 {
				d.Logger.Info("No pagination detected, stopping after page 1")
			} else {
				d.Logger.Info("No more pages, stopping", "page", page)
			}
			break
		}

		pageURL = nextPageURL(listingURL, listing.NextURL, page+1, visited)
	}

	return found.List(), nil
}

// DiscoverAll walks every listing URL of cfg and returns seeds carrying
// the listing they came from. Each listing contributes at most
// PerListingLimit URLs and the walk stops once TargetCount URLs have been
// collected. Listing failures are logged and skipped.
func (d *Discoverer) DiscoverAll(ctx context.Context, cfg *recipefeed.SourceConfig) ([]recipefeed.Seed, error) {
	seen := d.newURLSet()
	var seeds []recipefeed.Seed

	for _, listingURL := range cfg.ListingURLs {
		urls, err := d.Discover(ctx, listingURL, cfg.MaxPages)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.Logger.Error("Error fetching listing", "url", listingURL, "error", err)
		}

		if cfg.PerListingLimit > 0 && len(urls) > cfg.PerListingLimit {
			urls = urls[:cfg.PerListingLimit]
		}

		category := listingCategory(listingURL)
		for _, u := range urls {
			if !seen.Add(u) {
				continue
			}
			seeds = append(seeds, recipefeed.Seed{
				URL: u,
				Metadata: recipefeed.Metadata{
					MetaDiscoveryCategory: category,
					MetaListingURL:        listingURL,
				},
			})
		}

		if cfg.TargetCount > 0 && len(seeds) >= cfg.TargetCount {
			break
		}
	}

	if cfg.TargetCount > 0 && len(seeds) > cfg.TargetCount {
		seeds = seeds[:cfg.TargetCount]
	}
	return seeds, nil
}

func (d *Discoverer) fetchListing(ctx context.Context, pageURL string) (*recipefeed.ListingPage, error) {
	if _, err := url.Parse(pageURL); err != nil {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "invalid listing URL %q: %v", pageURL, err)
	}

	var html string
	err := d.retry().Do(ctx, func(ctx context.Context) error {
		var err error
		html, err = recipefeed.FetchHTML(ctx, d.Fetcher, pageURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	return d.Parser.ParseListing(html, pageURL)
}

// pause applies the rate limit that follows every listing page fetch.
func (d *Discoverer) pause(ctx context.Context, pageURL string) error {
	if d.RateLimiter == nil {
		return nil
	}
	var host string
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Host
	}
	return d.RateLimiter.Wait(ctx, host)
}

func (d *Discoverer) retry() *RetryPolicy {
	if d.Retry != nil {
		return d.Retry
	}
	return &RetryPolicy{MaxAttempts: 1}
}

func (d *Discoverer) newURLSet() recipefeed.URLSet {
	if d.NewURLSet != nil {
		return d.NewURLSet()
	}
	return bloom.NewURLSet(bloom.DefaultCapacity, bloom.DefaultFalsePositiveRate)
}

// nextPageURL returns the URL of the next listing page. The affordance's
// own target is preferred; otherwise the page number is set as the "page"
// query parameter of the listing URL.
func nextPageURL(listingURL, href string, page int, visited map[string]bool) string {
	if href != "" && !visited[href] {
		return href
	}
	u, err := url.Parse(listingURL)
	if err != nil {
		return fmt.Sprintf("%s?page=%d", listingURL, page)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// listingCategory names a listing by the last segment of its path, e.g.
// "soups" for https://example.com/recipes-categories/soups/.
func listingCategory(listingURL string) string {
	u, err := url.Parse(listingURL)
	if err != nil {
		return ""
	}
	base := path.Base(path.Clean("/" + u.Path))
	if base == "/" || base == "." {
		return ""
	}
	return base
}
