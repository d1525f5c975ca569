// Package crawl provides recipe ingestion orchestration.
// It coordinates URL discovery, rate-limited fetching with retries,
// extraction, normalization, validation and snapshot storage.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/recipefeed"
	"github.com/fwojciec/recipefeed/bloom"
)

// reportLimit is how many failed URLs and validation failures the run
// report lists before summarizing the rest.
const reportLimit = 5

// Pipeline runs the ingestion of one source.
type Pipeline struct {
	// Fetcher retrieves listing pages. Item pages are fetched by Extractor.
	Fetcher   recipefeed.Fetcher
	Parser    recipefeed.ListingParser
	Extractor recipefeed.Extractor

	// Sitemaps and Seeds are only required by sources that use them.
	Sitemaps recipefeed.URLSource
	Seeds    recipefeed.SeedLoader

	Store       recipefeed.SnapshotStore
	RateLimiter recipefeed.DomainLimiter
	Retry       *RetryPolicy
	Normalizer  *recipefeed.Normalizer
	Logger      recipefeed.Logger
}

// Run ingests the source described by cfg and returns the run summary.
//
// Per-item failures never abort the run; they are counted in the summary.
// An error is returned only for invalid configuration, an unreadable seed
// file, a snapshot write failure or cancellation. A run that finds no URLs
// returns a summary whose verdict is failed.
func (p *Pipeline) Run(ctx context.Context, cfg recipefeed.SourceConfig) (*recipefeed.RunSummary, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p.Logger.Info("Starting ingestion", "source", cfg.Name, "target", cfg.TargetCount)

	p.section("DISCOVERING RECIPE URLS")
	seeds, err := p.collectSeeds(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		p.Logger.Error("No recipe URLs found", "source", cfg.Name)
		return recipefeed.NewRunSummary(cfg.Name, 0, nil, nil, cfg.SuccessThreshold), nil
	}
	p.Logger.Success("Collected unique recipe URLs", "count", len(seeds))

	p.section("SCRAPING RECIPES")
	raws, failed, err := p.extractAll(ctx, seeds, &cfg)
	if err != nil {
		return nil, err
	}

	if err := p.Store.WriteRaw(ctx, raws); err != nil {
		return nil, fmt.Errorf("writing raw snapshot: %w", err)
	}
	p.Logger.Success("Saved raw recipes", "count", len(raws))

	p.section("TRANSFORMING TO CANONICAL SCHEMA")
	records := p.normalizeAll(raws, &cfg)

	if err := p.Store.WriteCanonical(ctx, records); err != nil {
		return nil, fmt.Errorf("writing canonical snapshot: %w", err)
	}
	p.Logger.Success("Saved transformed recipes", "count", len(records))

	summary := recipefeed.NewRunSummary(cfg.Name, len(seeds), failed, records, cfg.SuccessThreshold)
	p.Report(summary)
	return summary, nil
}

// collectSeeds gathers item URLs from the seed file, the sitemap and the
// listing pages, in that order, deduplicated and capped at the target.
func (p *Pipeline) collectSeeds(ctx context.Context, cfg *recipefeed.SourceConfig) ([]recipefeed.Seed, error) {
	var all []recipefeed.Seed

	if cfg.SeedFile != "" {
		seeds, err := p.Seeds.LoadSeeds(ctx, cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("loading seeds: %w", err)
		}
		p.Logger.Info("Loaded seed file", "path", cfg.SeedFile, "count", len(seeds))
		all = append(all, seeds...)
	}

	if cfg.SitemapURL != "" {
		urls, err := p.Sitemaps.DiscoverURLs(ctx, cfg.SitemapURL, &cfg.ItemPattern)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.Logger.Error("Sitemap discovery failed", "url", cfg.SitemapURL, "error", err)
		}
		for _, u := range urls {
			all = append(all, recipefeed.Seed{URL: u})
		}
	}

	if len(cfg.ListingURLs) > 0 {
		d := &Discoverer{
			Fetcher:     p.Fetcher,
			Parser:      p.Parser,
			RateLimiter: p.RateLimiter,
			Retry:       p.retryPolicy(),
			Pattern:     &cfg.ItemPattern,
			Logger:      p.Logger,
		}
		seeds, err := d.DiscoverAll(ctx, cfg)
		if err != nil {
			return nil, err
		}
		all = append(all, seeds...)
	}

	seen := bloom.NewURLSet(bloom.DefaultCapacity, bloom.DefaultFalsePositiveRate)
	seeds := make([]recipefeed.Seed, 0, len(all))
	for _, s := range all {
		if !seen.Add(s.URL) {
			continue
		}
		seeds = append(seeds, s)
	}
	if cfg.TargetCount > 0 && len(seeds) > cfg.TargetCount {
		seeds = seeds[:cfg.TargetCount]
	}
	return seeds, nil
}

// extractAll fetches and extracts every seed in order, returning the
// records and the URLs that could not be extracted.
func (p *Pipeline) extractAll(ctx context.Context, seeds []recipefeed.Seed, cfg *recipefeed.SourceConfig) ([]*recipefeed.RawRecord, []string, error) {
	raws := make([]*recipefeed.RawRecord, 0, len(seeds))
	var failed []string

	for i, seed := range seeds {
		p.Logger.Info(fmt.Sprintf("[%d/%d] Processing", i+1, len(seeds)), "url", seed.URL)

		rec, err := p.extractOne(ctx, seed)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, nil, ctx.Err()
		case err != nil:
			p.Logger.Error("Failed to scrape", "url", seed.URL, "error", err)
			failed = append(failed, seed.URL)
		default:
			p.Logger.Success("Scraped", "recipe", rec.Title)
			raws = append(raws, rec)
		}

		if err := p.pause(ctx, seed.URL); err != nil {
			return nil, nil, err
		}
	}

	return raws, failed, nil
}

func (p *Pipeline) extractOne(ctx context.Context, seed recipefeed.Seed) (*recipefeed.RawRecord, error) {
	policy := *p.retryPolicy()
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		p.Logger.Warn("Retrying", "url", seed.URL, "attempt", attempt, "delay", delay, "error", err)
	}

	var rec *recipefeed.RawRecord
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		rec, err = p.Extractor.Extract(ctx, seed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// pause applies the rate limit that follows every item fetch, whatever its
// outcome.
func (p *Pipeline) pause(ctx context.Context, rawURL string) error {
	if p.RateLimiter == nil {
		return nil
	}
	var host string
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	return p.RateLimiter.Wait(ctx, host)
}

func (p *Pipeline) normalizeAll(raws []*recipefeed.RawRecord, cfg *recipefeed.SourceConfig) []*recipefeed.CanonicalRecord {
	normalizer := p.Normalizer
	if normalizer == nil {
		normalizer = recipefeed.NewNormalizer()
	}
	rules := cfg.Rules()

	records := make([]*recipefeed.CanonicalRecord, 0, len(raws))
	for _, raw := range raws {
		rec := normalizer.Normalize(raw, cfg)
		if ok, issues := recipefeed.Validate(rec, rules); ok {
			p.Logger.Success("Validated", "recipe", rec.Name)
		} else {
			rec.Issues = issues
			p.Logger.Warn("Validation issues", "recipe", rec.Name, "issues", strings.Join(issues, ", "))
		}
		records = append(records, rec)
	}
	return records
}

func (p *Pipeline) retryPolicy() *RetryPolicy {
	if p.Retry != nil {
		return p.Retry
	}
	return NewRetryPolicy(recipefeed.RetryConfig{
		MaxAttempts:   recipefeed.DefaultMaxAttempts,
		BaseDelay:     recipefeed.DefaultBaseDelay,
		BackoffFactor: recipefeed.DefaultBackoffFactor,
	})
}

func (p *Pipeline) section(title string) {
	p.Logger.Info(strings.Repeat("=", 70))
	p.Logger.Info(title)
	p.Logger.Info(strings.Repeat("=", 70))
}

// Report logs the scraping, validation and quality results of a run,
// followed by the first failed URLs and validation failures and the verdict.
func (p *Pipeline) Report(s *recipefeed.RunSummary) {
	p.section("SUMMARY")

	p.Logger.Info("Scraping results:")
	p.Logger.Success(fmt.Sprintf("  Successful: %d/%d (%.1f%%)", s.FetchSuccess, s.Attempted, s.RoundedRate()))
	if s.FetchFailures > 0 {
		p.Logger.Error(fmt.Sprintf("  Failed: %d/%d", s.FetchFailures, s.Attempted))
	}

	p.Logger.Info("Validation results:")
	p.Logger.Success(fmt.Sprintf("  Valid: %d/%d", s.Valid, s.Quality.Total))
	if s.Invalid > 0 {
		p.Logger.Warn(fmt.Sprintf("  Issues found: %d", s.Invalid))
	}

	p.Logger.Info("Quality checks:")
	p.Logger.Info(fmt.Sprintf("  With images: %d/%d", s.Quality.WithImages, s.Quality.Total))
	p.Logger.Info(fmt.Sprintf("  With servings: %d/%d", s.Quality.WithServings, s.Quality.Total))
	p.Logger.Info(fmt.Sprintf("  With prep time: %d/%d", s.Quality.WithPrepTime, s.Quality.Total))
	p.Logger.Info(fmt.Sprintf("  With cook time: %d/%d", s.Quality.WithCookTime, s.Quality.Total))

	if len(s.FailedURLs) > 0 {
		p.Logger.Warn(fmt.Sprintf("Failed URLs (%d):", len(s.FailedURLs)))
		for _, u := range head(s.FailedURLs, reportLimit) {
			p.Logger.Warn("  - " + u)
		}
		if n := len(s.FailedURLs) - reportLimit; n > 0 {
			p.Logger.Warn(fmt.Sprintf("  ... and %d more", n))
		}
	}

	if len(s.ValidationFailures) > 0 {
		p.Logger.Warn(fmt.Sprintf("Validation issues (%d):", len(s.ValidationFailures)))
		for _, f := range head(s.ValidationFailures, reportLimit) {
			p.Logger.Warn(fmt.Sprintf("  - %s: %s", f.Name, strings.Join(f.Issues, ", ")))
		}
		if n := len(s.ValidationFailures) - reportLimit; n > 0 {
			p.Logger.Warn(fmt.Sprintf("  ... and %d more", n))
		}
	}

	if s.Passed {
		p.Logger.Success("Scraping complete", "source", s.Source)
	} else {
		p.Logger.Error(fmt.Sprintf("Success rate %.1f%% below threshold %.0f%%", s.RoundedRate(), s.Threshold), "source", s.Source)
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
