package mock

import (
	"context"

	"github.com/serplens/serplens"
)

var _ serplens.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of serplens.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, req serplens.SearchRequest) ([]serplens.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, req serplens.SearchRequest) ([]serplens.SearchResult, error) {
	return s.SearchFn(ctx, req)
}

var _ serplens.LanguageService = (*LanguageService)(nil)

// LanguageService is a mock implementation of serplens.LanguageService.
type LanguageService struct {
	EntitiesFn  func(ctx context.Context, text string) ([]serplens.Entity, error)
	SentimentFn func(ctx context.Context, text string) (*serplens.Sentiment, error)
}

func (s *LanguageService) Entities(ctx context.Context, text string) ([]serplens.Entity, error) {
	return s.EntitiesFn(ctx, text)
}

func (s *LanguageService) Sentiment(ctx context.Context, text string) (*serplens.Sentiment, error) {
	return s.SentimentFn(ctx, text)
}
