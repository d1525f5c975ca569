package mock

import (
	"context"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.URLSet = (*URLSet)(nil)

// URLSet is a mock implementation of recipefeed.URLSet.
type URLSet struct {
	AddFn  func(url string) bool
	ListFn func() []string
	LenFn  func() int
}

func (s *URLSet) Add(url string) bool {
	return s.AddFn(url)
}

func (s *URLSet) List() []string {
	return s.ListFn()
}

func (s *URLSet) Len() int {
	return s.LenFn()
}

var _ recipefeed.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of recipefeed.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

// NoopLimiter returns a DomainLimiter that never waits.
func NoopLimiter() *DomainLimiter {
	return &DomainLimiter{
		WaitFn: func(ctx context.Context, _ string) error { return ctx.Err() },
	}
}

var _ recipefeed.ListingParser = (*ListingParser)(nil)

// ListingParser is a mock implementation of recipefeed.ListingParser.
type ListingParser struct {
	ParseListingFn func(html, pageURL string) (*recipefeed.ListingPage, error)
}

func (p *ListingParser) ParseListing(html, pageURL string) (*recipefeed.ListingPage, error) {
	return p.ParseListingFn(html, pageURL)
}
