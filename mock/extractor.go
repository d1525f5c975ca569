package mock

import (
	"context"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of recipefeed.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, seed recipefeed.Seed) (*recipefeed.RawRecord, error)
	FieldsFn  func() recipefeed.FieldSet
}

func (e *Extractor) Extract(ctx context.Context, seed recipefeed.Seed) (*recipefeed.RawRecord, error) {
	return e.ExtractFn(ctx, seed)
}

func (e *Extractor) Fields() recipefeed.FieldSet {
	if e.FieldsFn == nil {
		return recipefeed.AllFields
	}
	return e.FieldsFn()
}

var _ recipefeed.RecipeScraper = (*RecipeScraper)(nil)

// RecipeScraper is a mock implementation of recipefeed.RecipeScraper.
type RecipeScraper struct {
	ScrapeFn func(ctx context.Context, url string) (*recipefeed.ScrapedRecipe, error)
}

func (s *RecipeScraper) Scrape(ctx context.Context, url string) (*recipefeed.ScrapedRecipe, error) {
	return s.ScrapeFn(ctx, url)
}

var _ recipefeed.MetadataReader = (*MetadataReader)(nil)

// MetadataReader is a mock implementation of recipefeed.MetadataReader.
type MetadataReader struct {
	ReadMetadataFn func(html, pageURL string) (*recipefeed.PageMetadata, error)
}

func (r *MetadataReader) ReadMetadata(html, pageURL string) (*recipefeed.PageMetadata, error) {
	return r.ReadMetadataFn(html, pageURL)
}
