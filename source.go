package recipefeed

import (
	"net/url"
	"strings"
	"time"
)

// ExtractorKind selects the extraction strategy for a source.
type ExtractorKind string

// Supported extractor kinds. A source uses exactly one.
const (
	ExtractorStructured ExtractorKind = "structured"
	ExtractorHeuristic  ExtractorKind = "heuristic"
)

// Defaults applied by SourceConfig.WithDefaults.
const (
	DefaultRateLimit        = 2 * time.Second
	DefaultTimeout          = 15 * time.Second
	DefaultMaxAttempts      = 3
	DefaultBaseDelay        = 2 * time.Second
	DefaultBackoffFactor    = 2.0
	DefaultMaxPages         = 10
	DefaultSuccessThreshold = 80.0
)

// SourceConfig describes one recipe source. Everything that differs between
// sources is data here rather than code.
type SourceConfig struct {
	Name string `yaml:"name"`

	// Where item URLs come from. ListingURLs are walked page by page,
	// SitemapURL is read as a sitemap, SeedFile is a JSON array of items.
	ListingURLs []string `yaml:"listing_urls"`
	SitemapURL  string   `yaml:"sitemap_url"`
	SeedFile    string   `yaml:"seed_file"`

	ItemPattern     URLPattern    `yaml:"item_pattern"`
	Extractor       ExtractorKind `yaml:"extractor"`
	MaxPages        int           `yaml:"max_pages"`
	PerListingLimit int           `yaml:"per_listing_limit"`
	TargetCount     int           `yaml:"target_count"`
	Render          bool          `yaml:"render"`

	// Percentage of attempted URLs that must succeed for the run to pass.
	SuccessThreshold float64 `yaml:"success_threshold"`
	MinIngredients   int     `yaml:"min_ingredients"`
	RequireImages    bool    `yaml:"require_images"`

	// Fixed values applied to every record of the source.
	Author  string   `yaml:"author"`
	Cuisine string   `yaml:"cuisine"`
	Tags    []string `yaml:"tags"`

	RateLimit time.Duration `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	Retry     RetryConfig   `yaml:"retry"`
}

// RetryConfig configures bounded exponential backoff.
type RetryConfig struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c SourceConfig) WithDefaults() SourceConfig {
	if c.Extractor == "" {
		c.Extractor = ExtractorStructured
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.SuccessThreshold == 0 {
		c.SuccessThreshold = DefaultSuccessThreshold
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = DefaultBaseDelay
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = DefaultBackoffFactor
	}
	return c
}

// Validate returns an error if the configuration cannot drive a run.
func (c *SourceConfig) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	if len(c.ListingURLs) == 0 && c.SitemapURL == "" && c.SeedFile == "" {
		return Errorf(EINVALID, "source %q: one of listing_urls, sitemap_url or seed_file required", c.Name)
	}
	switch c.Extractor {
	case ExtractorStructured, ExtractorHeuristic:
	default:
		return Errorf(EINVALID, "source %q: unknown extractor %q", c.Name, c.Extractor)
	}
	if c.SuccessThreshold < 0 || c.SuccessThreshold > 100 {
		return Errorf(EINVALID, "source %q: success_threshold must be between 0 and 100", c.Name)
	}
	for _, u := range c.ListingURLs {
		if _, err := url.ParseRequestURI(u); err != nil {
			return Errorf(EINVALID, "source %q: invalid listing URL %q", c.Name, u)
		}
	}
	return nil
}

// Rules returns the validation rules for records of this source.
func (c *SourceConfig) Rules() ValidationRules {
	return ValidationRules{
		MinIngredients: c.MinIngredients,
		RequireImages:  c.RequireImages,
	}
}

// URLPattern decides whether a link points at a recipe page.
type URLPattern struct {
	// Include substrings; a URL must contain at least one.
	Include []string `yaml:"include"`

	// Exclude substrings; a URL containing any of them is rejected.
	// Exclude is applied after Include.
	Exclude []string `yaml:"exclude"`

	// Host restricts matches to URLs on this host (or a subdomain of it).
	Host string `yaml:"host"`

	// TrailingSlash requires the URL path to end with "/".
	TrailingSlash bool `yaml:"trailing_slash"`

	// MinSegments is the minimum number of non-empty path segments.
	MinSegments int `yaml:"min_segments"`
}

// Match returns true if the URL passes the pattern.
// If the pattern is nil, all URLs pass.
func (p *URLPattern) Match(rawURL string) bool {
	if p == nil {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	if p.Host != "" && u.Hostname() != p.Host && !strings.HasSuffix(u.Hostname(), "."+p.Host) {
		return false
	}

	// If include patterns exist, URL must match at least one
	if len(p.Include) > 0 {
		matched := false
		for _, s := range p.Include {
			if strings.Contains(rawURL, s) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, s := range p.Exclude {
		if strings.Contains(rawURL, s) {
			return false
		}
	}

	if p.TrailingSlash && !strings.HasSuffix(u.Path, "/") {
		return false
	}

	if p.MinSegments > 0 {
		var n int
		for _, seg := range strings.Split(u.Path, "/") {
			if seg != "" {
				n++
			}
		}
		if n < p.MinSegments {
			return false
		}
	}

	return true
}
