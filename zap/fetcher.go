package zap

import (
	"context"
	"time"

	"github.com/fwojciec/recipefeed"
	"go.uber.org/zap"
)

// Ensure LoggingFetcher implements recipefeed.Fetcher.
var _ recipefeed.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   recipefeed.Fetcher
	logger *zap.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next recipefeed.Fetcher, logger *zap.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the request.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *recipefeed.Response, err error) {
	defer func(begin time.Time) {
		fields := []zap.Field{
			zap.String("url", url),
			zap.Duration("duration", time.Since(begin)),
		}
		if resp != nil {
			fields = append(fields, zap.Int("status", resp.StatusCode), zap.Int("bytes", len(resp.Body)))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		f.logger.Debug("fetch", fields...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
