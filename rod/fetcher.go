// Package rod renders script-built pages in headless Chrome.
package rod

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/recipefeed"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Defaults for NewFetcher.
const (
	DefaultFetchTimeout = 30 * time.Second

	// DefaultRecycleAfter is the number of pages rendered before the browser
	// is restarted. Chrome's memory baseline grows with every page.
	DefaultRecycleAfter = 75
)

// Ensure Fetcher implements recipefeed.Fetcher at compile time.
var _ recipefeed.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// It serves listing pages that build their recipe links with JavaScript.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout      time.Duration
	recycleAfter int64

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    atomic.Int64
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page render timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRecycleAfter sets how many pages are rendered before the browser is
// restarted.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		recycleAfter: DefaultRecycleAfter,
	}
	for _, opt := range opts {
		opt(f)
	}

	browser, l, err := launch()
	if err != nil {
		return nil, err
	}
	f.browser, f.launcher = browser, l
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML together with the
// status of the main document. Browser failures return a *recipefeed.NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*recipefeed.Response, error) {
	if f.closed.Load() {
		return nil, recipefeed.Errorf(recipefeed.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.currentBrowser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, networkError(url, err)
	}
	defer page.Close()
	defer f.pages.Add(1)

	pageCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(pageCtx)

	status := 0
	wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(url); err != nil {
		return nil, fetchError(ctx, url, err)
	}
	wait()
	if err := page.WaitLoad(); err != nil {
		return nil, fetchError(ctx, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fetchError(ctx, url, err)
	}

	if status == 0 {
		status = http.StatusOK
	}
	return &recipefeed.Response{URL: url, StatusCode: status, Body: html}, nil
}

// fetchError returns the caller's cancellation as is and wraps everything
// else, including the per-page timeout, as a network error.
func fetchError(ctx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return networkError(url, err)
}

func networkError(url string, err error) *recipefeed.NetworkError {
	return &recipefeed.NetworkError{URL: url, Kind: fmt.Sprintf("%T", err), Err: err}
}

// currentBrowser returns the browser, restarting it first once the page
// count reaches the recycle threshold. A failed restart keeps the old one.
func (f *Fetcher) currentBrowser() *rod.Browser {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recycleAfter <= 0 || f.pages.Load() < f.recycleAfter {
		return f.browser
	}

	browser, l, err := launch()
	if err != nil {
		return f.browser
	}
	_ = f.browser.Close()
	f.launcher.Kill()
	f.browser, f.launcher = browser, l
	f.pages.Store(0)
	return f.browser
}

// launch starts a headless browser with stability flags.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, l, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.browser.Close()
	f.launcher.Kill()
	return err
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.launcher.PID()
}
