package mock

import (
	"context"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of recipefeed.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*recipefeed.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*recipefeed.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

// HTMLFetcher returns a Fetcher serving pages from a URL->body map.
// Unknown URLs respond with 404.
func HTMLFetcher(pages map[string]string) *Fetcher {
	return &Fetcher{
		FetchFn: func(_ context.Context, url string) (*recipefeed.Response, error) {
			body, ok := pages[url]
			if !ok {
				return &recipefeed.Response{URL: url, StatusCode: 404}, nil
			}
			return &recipefeed.Response{URL: url, StatusCode: 200, Body: body}, nil
		},
	}
}
