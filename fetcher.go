package recipefeed

import "context"

// Response is the outcome of a single HTTP GET that reached the server.
// Non-2xx statuses are data, not errors; callers decide what to retry.
type Response struct {
	URL        string
	StatusCode int
	Body       string
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns a *StatusError for non-2xx responses, nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{URL: r.URL, StatusCode: r.StatusCode}
}

// Fetcher retrieves pages from URLs.
type Fetcher interface {
	// Fetch performs one GET request. Transport failures return a
	// *NetworkError and never a partial body.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// FetchHTML fetches url and converts a non-2xx status into a *StatusError.
func FetchHTML(ctx context.Context, f Fetcher, url string) (string, error) {
	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.Body, nil
}

// DomainLimiter paces requests to a domain. Callers invoke Wait once after
// each request, never before the first one.
type DomainLimiter interface {
	// Wait blocks for the configured delay after a request to domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// Logger receives run log lines. Key-value pairs follow the message.
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Success(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
