package mock

import "github.com/serplens/serplens"

var _ serplens.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of serplens.Extractor.
type Extractor struct {
	ExtractFn func(html, sourceURL string) (*serplens.ScrapedPage, error)
}

func (e *Extractor) Extract(html, sourceURL string) (*serplens.ScrapedPage, error) {
	return e.ExtractFn(html, sourceURL)
}
