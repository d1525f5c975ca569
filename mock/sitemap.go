package mock

import (
	"context"

	"github.com/fwojciec/recipefeed"
)

var _ recipefeed.URLSource = (*URLSource)(nil)

// URLSource is a mock implementation of recipefeed.URLSource.
type URLSource struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, pattern *recipefeed.URLPattern) ([]string, error)
}

func (s *URLSource) DiscoverURLs(ctx context.Context, baseURL string, pattern *recipefeed.URLPattern) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, pattern)
}
