package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/serplens/serplens"
)

// Ensure LoggingSearchService implements serplens.SearchService.
var _ serplens.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with per-query logging.
type LoggingSearchService struct {
	next   serplens.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next serplens.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service, logging the outcome.
func (s *LoggingSearchService) Search(ctx context.Context, req serplens.SearchRequest) ([]serplens.SearchResult, error) {
	begin := time.Now()
	results, err := s.next.Search(ctx, req)
	if err != nil {
		s.logger.Error("search",
			"keyword", req.Keyword,
			"country", req.Country,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	s.logger.Info("search",
		"keyword", req.Keyword,
		"country", req.Country,
		"results", len(results),
		"duration", time.Since(begin),
	)
	return results, nil
}
