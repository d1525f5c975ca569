package goquery

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/recipefeed"
)

// Ensure StructuredExtractor implements recipefeed.Extractor at compile time.
var _ recipefeed.Extractor = (*StructuredExtractor)(nil)

// StructuredExtractor delegates extraction to a RecipeScraper and maps its
// result onto a RawRecord.
type StructuredExtractor struct {
	Scraper recipefeed.RecipeScraper

	// Author and Cuisine fill in values the scraper did not return.
	Author  string
	Cuisine string

	// Now returns the scrape timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewStructuredExtractor creates a StructuredExtractor for the given source.
func NewStructuredExtractor(scraper recipefeed.RecipeScraper, src *recipefeed.SourceConfig) *StructuredExtractor {
	return &StructuredExtractor{
		Scraper: scraper,
		Author:  src.Author,
		Cuisine: src.Cuisine,
	}
}

// Fields reports that structured data can carry every field except notes.
func (e *StructuredExtractor) Fields() recipefeed.FieldSet {
	return recipefeed.AllFields &^ recipefeed.Fields(recipefeed.FieldNotes)
}

// Extract scrapes seed.URL. A not-found response from the scraper becomes
// an ENOTFOUND error; every other scraper error is returned unchanged.
func (e *StructuredExtractor) Extract(ctx context.Context, seed recipefeed.Seed) (*recipefeed.RawRecord, error) {
	r, err := e.Scraper.Scrape(ctx, seed.URL)
	if err != nil {
		var statusErr *recipefeed.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return nil, recipefeed.Errorf(recipefeed.ENOTFOUND, "recipe not found: %s (HTTP %d)", seed.URL, statusErr.StatusCode)
		}
		return nil, err
	}
	if r.Title == "" {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "no recipe title for %s", seed.URL)
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	author := firstNonEmpty(r.Author, seed.Metadata.String("author"), e.Author)
	cuisine := firstNonEmpty(r.Cuisine, e.Cuisine)

	return &recipefeed.RawRecord{
		URL:          seed.URL,
		ScrapedAt:    now().UTC(),
		Title:        r.Title,
		Author:       author,
		Description:  r.Description,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		TotalTime:    r.TotalTime,
		Yields:       r.Yields,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Images:       r.Images,
		Cuisine:      cuisine,
		Category:     r.Category,
		Ratings:      r.Ratings,
		Metadata:     seed.Metadata,
		ContentHash:  r.ContentHash,
		Fields:       e.Fields(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
