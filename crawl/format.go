package crawl

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	h := xxhash.Sum64String(content)
	return fmt.Sprintf("%x", h)
}

// Slug returns the last non-empty path segment of a URL, e.g.
// "braised-short-ribs" for https://example.com/recipes/braised-short-ribs/.
func Slug(rawURL string) string {
	rawURL, _, _ = strings.Cut(rawURL, "?")
	parts := strings.Split(strings.TrimRight(rawURL, "/"), "/")
	return parts[len(parts)-1]
}

// AuthorFromSlug turns a chef page slug such as "nancy-silverton" into a
// display name ("Nancy Silverton").
func AuthorFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
