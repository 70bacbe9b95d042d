package serplens

import "context"

// ScrapedPage holds the structured signals extracted from one page.
type ScrapedPage struct {
	Title           string
	MetaDescription string

	// Content is the cleaned main-body text with whitespace runs collapsed.
	Content string

	// FullContent is the original markup, unmodified by boilerplate removal.
	FullContent string

	WordCount      int
	Headings       []Heading
	Images         []Image
	Links          LinkCounts
	StructuredData []map[string]any
	StyledElements StyledElements
}

// Fetcher retrieves a URL's raw markup.
type Fetcher interface {
	// Fetch issues a single GET and returns the response body.
	// A non-2xx response or an exceeded deadline is an error; there are
	// no retries.
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor parses raw markup into structured page data.
// Implementations must be deterministic and side-effect-free.
type Extractor interface {
	// Extract processes raw HTML. The source URL anchors internal/external
	// link classification.
	Extract(html, sourceURL string) (*ScrapedPage, error)
}

// RateLimiter paces calls to external collaborators. It is injected as an
// explicit policy so tests can run with zero delay.
type RateLimiter interface {
	// Wait blocks until the policy allows the next call.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context) error
}

// Scraper combines fetching and extraction.
type Scraper interface {
	// ScrapePage fetches and parses a single URL.
	ScrapePage(ctx context.Context, url string) (*ScrapedPage, error)

	// ScrapePages processes urls sequentially, pausing between requests.
	// A failed URL is logged and absent from the result map; it never
	// aborts the batch.
	ScrapePages(ctx context.Context, urls []string) (map[string]*ScrapedPage, error)
}
