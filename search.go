package serplens

import "context"

// SearchResult is one candidate page returned by the search provider.
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

// SearchRequest parameterizes a web search.
type SearchRequest struct {
	Keyword  string
	Country  string
	Language string
}

// SearchService performs web searches against an external provider.
type SearchService interface {
	// Search returns up to 10 results in rank order. Provider failures
	// surface as EUNAVAILABLE errors.
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
}

// MaxLanguageInputLen is the maximum text length submitted to language
// providers; longer input is truncated before submission.
const MaxLanguageInputLen = 1_000_000

// LanguageService extracts entities and sentiment from text via an
// external language-analysis provider. Calls have no internal timeout;
// callers bound them through the context.
type LanguageService interface {
	// Entities returns the named entities found in text.
	Entities(ctx context.Context, text string) ([]Entity, error)

	// Sentiment returns the document-level sentiment of text.
	Sentiment(ctx context.Context, text string) (*Sentiment, error)
}

// TruncateForLanguage clips text to MaxLanguageInputLen bytes.
func TruncateForLanguage(text string) string {
	if len(text) > MaxLanguageInputLen {
		return text[:MaxLanguageInputLen]
	}
	return text
}
