// Package http provides the HTTP-facing implementations for serplens:
// the page Fetcher used by the scraping pipeline and the API server that
// exposes the analysis boundary.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/serplens/serplens"
)

// DefaultFetchTimeout is the default timeout for page fetches.
const DefaultFetchTimeout = 10 * time.Second

// browserHeaders make the fetcher look like a desktop browser; many sites
// serve bot traffic a degraded or empty page otherwise.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Upgrade-Insecure-Requests": "1",
}

// Ensure Fetcher implements serplens.Fetcher at compile time.
var _ serplens.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves raw page markup over HTTP. A single GET per URL, no
// retries; a failed attempt fails the fetch.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the hard per-fetch timeout.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient sets the underlying HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	return f
}

// Fetch retrieves the raw markup from the given URL. An exceeded deadline
// returns an ETIMEOUT error naming the timeout; any other network failure
// or a non-2xx status returns EUNAVAILABLE.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", serplens.Errorf(serplens.EINVALID, "invalid URL %q: %v", url, err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", serplens.Errorf(serplens.ETIMEOUT, "timeout after %dms fetching %s", f.timeout.Milliseconds(), url)
		}
		return "", serplens.Errorf(serplens.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", serplens.Errorf(serplens.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", serplens.Errorf(serplens.ETIMEOUT, "timeout after %dms fetching %s", f.timeout.Milliseconds(), url)
		}
		return "", serplens.Errorf(serplens.EUNAVAILABLE, "read %s: %v", url, err)
	}

	return string(body), nil
}
