package recipefeed

import (
	"context"
	"encoding/json"
)

// Field identifies an optional RawRecord field.
type Field uint16

// Optional recipe fields an extractor may or may not supply.
const (
	FieldAuthor Field = 1 << iota
	FieldDescription
	FieldPrepTime
	FieldCookTime
	FieldTotalTime
	FieldYields
	FieldImages
	FieldCuisine
	FieldCategory
	FieldRatings
	FieldNotes
)

// FieldSet is the set of optional fields an extractor supports.
type FieldSet uint16

// AllFields contains every optional field.
const AllFields = FieldSet(FieldAuthor | FieldDescription | FieldPrepTime | FieldCookTime |
	FieldTotalTime | FieldYields | FieldImages | FieldCuisine | FieldCategory | FieldRatings | FieldNotes)

// Fields builds a FieldSet.
func Fields(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s |= FieldSet(f)
	}
	return s
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) != 0
}

// Seed is an item URL with metadata supplied before extraction, either from
// a seed file or from the listing it was discovered on.
type Seed struct {
	URL      string   `json:"url"`
	Metadata Metadata `json:"-"`
}

// Extractor turns a source page into a RawRecord.
//
// Implementations return an error with code EPARSE when a required element
// is absent and ENOTFOUND when the page does not exist. Both are permanent.
type Extractor interface {
	// Extract fetches and extracts the recipe at seed.URL.
	Extract(ctx context.Context, seed Seed) (*RawRecord, error)

	// Fields declares which optional fields the extractor can supply.
	// Fields outside the set are treated as absent.
	Fields() FieldSet
}

// RecipeScraper is an external recipe-metadata extraction capability.
// Given a URL it returns the recipe fields directly.
type RecipeScraper interface {
	Scrape(ctx context.Context, url string) (*ScrapedRecipe, error)
}

// ScrapedRecipe is the result of a RecipeScraper call.
type ScrapedRecipe struct {
	Title        string
	Author       string
	Description  string
	PrepTime     *int
	CookTime     *int
	TotalTime    *int
	Yields       string
	Ingredients  []string
	Instructions Instructions
	Images       []string
	Cuisine      string
	Category     string
	Ratings      json.RawMessage
	ContentHash  string
}

// PageMetadata is descriptive metadata read from a page's head.
type PageMetadata struct {
	Title       string
	Author      string
	Description string
	Image       string
	Categories  []string
}

// MetadataReader reads descriptive page metadata from HTML.
type MetadataReader interface {
	ReadMetadata(html, pageURL string) (*PageMetadata, error)
}

// TextConverter converts an HTML fragment to plain text.
type TextConverter interface {
	Convert(html string) (string, error)
}
