// Package scrape composes fetching and extraction into page scraping.
// Batch scraping is strictly sequential with an inter-request delay to
// respect the load limits of the sites being visited.
package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/serplens/serplens"
)

// DefaultDelay is the default pause between requests in a batch scrape.
const DefaultDelay = 1 * time.Second

// Ensure Scraper implements serplens.Scraper at compile time.
var _ serplens.Scraper = (*Scraper)(nil)

// Scraper fetches pages and extracts their structured signals.
type Scraper struct {
	fetcher   serplens.Fetcher
	extractor serplens.Extractor
	limiter   serplens.RateLimiter
	logger    *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithLimiter sets the inter-request rate limit for batch scrapes.
// Defaults to one request per DefaultDelay.
func WithLimiter(l serplens.RateLimiter) Option {
	return func(s *Scraper) {
		s.limiter = l
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = l
	}
}

// New creates a Scraper over the given fetcher and extractor.
func New(fetcher serplens.Fetcher, extractor serplens.Extractor, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewIntervalLimiter(DefaultDelay)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ScrapePage fetches a single URL and parses it into a ScrapedPage.
func (s *Scraper) ScrapePage(ctx context.Context, url string) (*serplens.ScrapedPage, error) {
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(html, url)
}

// ScrapePages processes urls sequentially, never concurrently, pausing
// between requests. A URL that fails to scrape is logged and absent from
// the result map; it never aborts the batch.
func (s *Scraper) ScrapePages(ctx context.Context, urls []string) (map[string]*serplens.ScrapedPage, error) {
	results := make(map[string]*serplens.ScrapedPage, len(urls))

	for i, url := range urls {
		if i > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return results, err
			}
		}

		s.logger.Info("scraping page", "url", url, "position", i+1, "total", len(urls))

		page, err := s.ScrapePage(ctx, url)
		if err != nil {
			s.logger.Warn("failed to scrape page", "url", url, "error", err)
			continue
		}
		results[url] = page
	}

	return results, nil
}
