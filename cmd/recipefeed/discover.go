package main

import (
	"net/url"
	"strings"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/crawl"
	"github.com/fwojciec/recipefeed/fs"
	"github.com/fwojciec/recipefeed/goquery"
	rfhttp "github.com/fwojciec/recipefeed/http"
	rfzap "github.com/fwojciec/recipefeed/zap"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return recipefeed.Errorf(recipefeed.EINVALID, "invalid listing URL %q", c.URL)
	}

	logger, err := rfzap.New(rfzap.Config{Stdout: deps.Stdout})
	if err != nil {
		return err
	}
	defer logger.Close()

	var fetcher recipefeed.Fetcher = rfhttp.NewFetcher()
	if c.Render {
		fetcher, err = deps.NewRenderer(recipefeed.DefaultTimeout)
		if err != nil {
			return err
		}
	}
	defer fetcher.Close()

	d := &crawl.Discoverer{
		Fetcher:     rfzap.NewLoggingFetcher(fetcher, logger.Zap()),
		Parser:      goquery.NewListingParser(),
		RateLimiter: crawl.NewDomainLimiter(c.RateLimit),
		Retry: crawl.NewRetryPolicy(recipefeed.RetryConfig{
			MaxAttempts:   recipefeed.DefaultMaxAttempts,
			BaseDelay:     recipefeed.DefaultBaseDelay,
			BackoffFactor: recipefeed.DefaultBackoffFactor,
		}),
		Pattern: &recipefeed.URLPattern{
			Include: c.Include,
			Exclude: c.Exclude,
			Host:    strings.TrimPrefix(u.Hostname(), "www."),
		},
		Logger: logger,
	}

	urls, err := d.Discover(deps.Ctx, c.URL, c.MaxPages)
	if err != nil {
		if len(urls) == 0 {
			return err
		}
		logger.Warn("Listing walk stopped early", "error", err)
	}
	if len(urls) == 0 {
		return recipefeed.Errorf(recipefeed.ENOTFOUND, "no recipe URLs found on %s", c.URL)
	}

	author := crawl.AuthorFromSlug(crawl.Slug(c.URL))
	seeds := make([]recipefeed.Seed, len(urls))
	for i, item := range urls {
		seeds[i] = recipefeed.Seed{
			URL: item,
			Metadata: recipefeed.Metadata{
				"slug":             crawl.Slug(item),
				"author":           author,
				"source":           c.Source,
				"chef_page":        c.URL,
				"extraction_order": i + 1,
			},
		}
	}

	if err := fs.NewSeedFile().WriteSeeds(deps.Ctx, c.Output, seeds); err != nil {
		return err
	}
	logger.Success("Saved seed file", "path", c.Output, "count", len(seeds))
	return nil
}
