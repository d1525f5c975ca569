// Package goquery parses recipe listing and recipe pages with goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/recipefeed"
)

// Ensure ListingParser implements recipefeed.ListingParser at compile time.
var _ recipefeed.ListingParser = (*ListingParser)(nil)

// ListingParser extracts item links and the next-page affordance from
// listing pages.
type ListingParser struct{}

// NewListingParser creates a new ListingParser.
func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// ParseListing returns every hyperlink on the page resolved against pageURL,
// in document order, and whether the page links to a next page.
//
// A next page is detected from a link whose rel includes "next", an anchor
// whose text is "Next" or an anchor with a class containing "next".
func (p *ListingParser) ParseListing(html, pageURL string) (*recipefeed.ListingPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, recipefeed.Errorf(recipefeed.EPARSE, "failed to parse HTML: %v", err)
	}

	page := &recipefeed.ListingPage{Links: []string{}}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}
		if resolved := resolveURL(base, href); resolved != "" {
			page.Links = append(page.Links, resolved)
		}
	})

	if next := findNextAffordance(doc); next != nil {
		page.HasNext = true
		if href, ok := next.Attr("href"); ok && !strings.HasPrefix(strings.TrimSpace(href), "#") && !isNonHTTPLink(href) {
			page.NextURL = resolveURL(base, href)
		}
	}

	return page, nil
}

// findNextAffordance returns the first element signalling a next page, or nil.
func findNextAffordance(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find(`a[rel~="next"], link[rel~="next"]`).First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.Text()), "next")
	}).First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("a[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return strings.Contains(strings.ToLower(class), "next")
	}).First(); sel.Length() > 0 {
		return sel
	}
	return nil
}

// resolveURL resolves href against base and strips the fragment.
// Returns "" if href cannot be parsed or the result is not http(s).
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = "" // Strip fragment for deduplication
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// resolveAgainst resolves href against pageURL, returning href unchanged
// when either cannot be parsed.
func resolveAgainst(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	if resolved := resolveURL(base, href); resolved != "" {
		return resolved
	}
	return href
}
