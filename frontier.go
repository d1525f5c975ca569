package recipefeed

// URLSet is an insertion-ordered set of URLs used to deduplicate discovered
// links while preserving first-seen order.
type URLSet interface {
	// Add inserts url. Returns false if it was already present.
	Add(url string) bool

	// List returns the URLs in insertion order.
	List() []string

	// Len returns the number of URLs in the set.
	Len() int
}

// ListingPage is the result of parsing one page of a paginated listing.
type ListingPage struct {
	// Links holds every hyperlink target resolved to an absolute URL, in
	// document order. Duplicates are kept.
	Links []string

	// HasNext reports whether the page shows a next-page affordance.
	HasNext bool

	// NextURL is the resolved target of the affordance, if it has one.
	NextURL string
}

// ListingParser extracts links and pagination hints from a listing page.
type ListingParser interface {
	ParseListing(html, pageURL string) (*ListingPage, error)
}
