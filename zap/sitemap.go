package zap

import (
	"context"
	"time"

	"github.com/fwojciec/recipefeed"
	"go.uber.org/zap"
)

// Ensure LoggingURLSource implements recipefeed.URLSource.
var _ recipefeed.URLSource = (*LoggingURLSource)(nil)

// LoggingURLSource wraps a URLSource with debug logging.
type LoggingURLSource struct {
	next   recipefeed.URLSource
	logger *zap.Logger
}

// NewLoggingURLSource creates a new LoggingURLSource.
func NewLoggingURLSource(next recipefeed.URLSource, logger *zap.Logger) *LoggingURLSource {
	return &LoggingURLSource{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped source and logs the operation.
func (s *LoggingURLSource) DiscoverURLs(ctx context.Context, baseURL string, pattern *recipefeed.URLPattern) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("sitemap discovery",
			zap.String("url", baseURL),
			zap.Int("count", len(urls)),
			zap.Duration("duration", time.Since(begin)),
			zap.Error(err),
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, pattern)
}
