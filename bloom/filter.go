// Package bloom provides URL deduplication using Bloom filters.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/recipefeed"
)

// DefaultCapacity is the expected number of URLs a URLSet is sized for.
const DefaultCapacity = 10000

// DefaultFalsePositiveRate is the filter's target false positive rate.
const DefaultFalsePositiveRate = 0.001

var _ recipefeed.URLSet = (*URLSet)(nil)

// URLSet is an insertion-ordered URL set.
//
// The index map is the authority on membership. The Bloom filter is only a
// fast negative path: a URL the filter has never seen is new without a map
// lookup, and every positive from the filter is confirmed against the map,
// so a false positive never drops a URL. EstimatedCount reads the filter.
type URLSet struct {
	f     *bloom.BloomFilter
	index map[string]struct{}
	urls  []string
}

// NewURLSet creates a URLSet whose filter is sized for n expected URLs at
// the given false positive rate. The sizing affects only how often the map
// is consulted, never the result.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{
		f:     bloom.NewWithEstimates(n, fpRate),
		index: make(map[string]struct{}),
	}
}

// Add inserts url. Returns false if it was already present.
func (s *URLSet) Add(url string) bool {
	if s.Contains(url) {
		return false
	}
	s.f.AddString(url)
	s.index[url] = struct{}{}
	s.urls = append(s.urls, url)
	return true
}

// Contains reports whether url has been added. A filter miss answers
// without touching the map.
func (s *URLSet) Contains(url string) bool {
	if !s.f.TestString(url) {
		return false
	}
	_, ok := s.index[url]
	return ok
}

// List returns the URLs in insertion order.
func (s *URLSet) List() []string {
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

// Len returns the number of URLs in the set.
func (s *URLSet) Len() int {
	return len(s.urls)
}

// EstimatedCount returns the filter's approximation of the number of URLs.
func (s *URLSet) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
