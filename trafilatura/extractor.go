// Package trafilatura reads page metadata with go-trafilatura. It serves as
// the fallback for fields missing from a page's structured recipe data.
package trafilatura

import (
	"errors"
	"net/url"
	"strings"

	"github.com/fwojciec/recipefeed"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure MetadataReader implements recipefeed.MetadataReader at compile time.
var _ recipefeed.MetadataReader = (*MetadataReader)(nil)

// MetadataReader wraps go-trafilatura to read descriptive page metadata.
type MetadataReader struct{}

// NewMetadataReader creates a new MetadataReader.
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// ReadMetadata processes raw HTML and returns its title, author,
// description, lead image and categories.
func (r *MetadataReader) ReadMetadata(rawHTML, pageURL string) (*recipefeed.PageMetadata, error) {
	if rawHTML == "" {
		return nil, errors.New("empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	meta := result.Metadata
	return &recipefeed.PageMetadata{
		Title:       strings.TrimSpace(meta.Title),
		Author:      strings.TrimSpace(meta.Author),
		Description: strings.TrimSpace(meta.Description),
		Image:       strings.TrimSpace(meta.Image),
		Categories:  meta.Categories,
	}, nil
}
