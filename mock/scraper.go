package mock

import (
	"context"

	"github.com/serplens/serplens"
)

var _ serplens.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of serplens.Scraper.
type Scraper struct {
	ScrapePageFn  func(ctx context.Context, url string) (*serplens.ScrapedPage, error)
	ScrapePagesFn func(ctx context.Context, urls []string) (map[string]*serplens.ScrapedPage, error)
}

func (s *Scraper) ScrapePage(ctx context.Context, url string) (*serplens.ScrapedPage, error) {
	return s.ScrapePageFn(ctx, url)
}

func (s *Scraper) ScrapePages(ctx context.Context, urls []string) (map[string]*serplens.ScrapedPage, error) {
	return s.ScrapePagesFn(ctx, urls)
}
