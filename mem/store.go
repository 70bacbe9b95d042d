// Package mem provides an in-memory implementation of
// serplens.AnalysisService: keyed tables behind a mutex with monotonically
// increasing integer ids. It is the reference store; sqlite/ provides the
// durable one.
package mem

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/serplens/serplens"
)

// Compile-time interface verification.
var _ serplens.AnalysisService = (*AnalysisService)(nil)

// AnalysisService implements serplens.AnalysisService with in-process maps.
// All operations are serialized by a single mutex, which also serializes
// id allocation as the store contract requires.
type AnalysisService struct {
	mu               sync.Mutex
	analyses         map[int64]*serplens.Analysis
	competitors      map[int64]*serplens.CompetitorResult
	nextAnalysisID   int64
	nextCompetitorID int64
}

// NewAnalysisService creates an empty in-memory store.
func NewAnalysisService() *AnalysisService {
	return &AnalysisService{
		analyses:         make(map[int64]*serplens.Analysis),
		competitors:      make(map[int64]*serplens.CompetitorResult),
		nextAnalysisID:   1,
		nextCompetitorID: 1,
	}
}

// CreateAnalysis persists a new analysis in pending state.
func (s *AnalysisService) CreateAnalysis(_ context.Context, analysis *serplens.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analysis.ID = s.nextAnalysisID
	s.nextAnalysisID++
	analysis.Status = serplens.StatusPending
	analysis.Results = nil
	analysis.CreatedAt = time.Now().UTC()
	analysis.CompletedAt = nil

	clone := *analysis
	s.analyses[analysis.ID] = &clone
	return nil
}

// FindAnalysisByID retrieves an analysis by ID.
func (s *AnalysisService) FindAnalysisByID(_ context.Context, id int64) (*serplens.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis, ok := s.analyses[id]
	if !ok {
		return nil, serplens.Errorf(serplens.ENOTFOUND, "analysis %d not found", id)
	}
	return cloneAnalysis(analysis), nil
}

// FindAnalyses retrieves all analyses, most recently created first.
func (s *AnalysisService) FindAnalyses(_ context.Context) ([]*serplens.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analyses := make([]*serplens.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		analyses = append(analyses, cloneAnalysis(a))
	}
	sort.Slice(analyses, func(i, j int) bool {
		if !analyses[i].CreatedAt.Equal(analyses[j].CreatedAt) {
			return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
		}
		return analyses[i].ID > analyses[j].ID
	})
	return analyses, nil
}

// UpdateAnalysisStatus transitions an analysis, enforcing the monotonic
// pending -> processing -> terminal lifecycle.
func (s *AnalysisService) UpdateAnalysisStatus(_ context.Context, id int64, status serplens.Status, results *serplens.AnalysisOutcome) (*serplens.Analysis, error) {
	if !status.Valid() {
		return nil, serplens.Errorf(serplens.EINVALID, "unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analysis, ok := s.analyses[id]
	if !ok {
		return nil, serplens.Errorf(serplens.ENOTFOUND, "analysis %d not found", id)
	}
	if !analysis.Status.CanTransition(status) {
		return nil, serplens.Errorf(serplens.EINVALID, "cannot transition analysis %d from %s to %s", id, analysis.Status, status)
	}

	analysis.Status = status
	if results != nil {
		analysis.Results = cloneOutcome(results)
	}
	if status.Terminal() {
		now := time.Now().UTC()
		analysis.CompletedAt = &now
	}

	return cloneAnalysis(analysis), nil
}

// CreateCompetitorResult persists a competitor page, assigning its ID and
// content hash. Ranks are unique within an analysis.
func (s *AnalysisService) CreateCompetitorResult(_ context.Context, result *serplens.CompetitorResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.analyses[result.AnalysisID]; !ok {
		return serplens.Errorf(serplens.ENOTFOUND, "analysis %d not found", result.AnalysisID)
	}
	for _, c := range s.competitors {
		if c.AnalysisID == result.AnalysisID && c.Rank == result.Rank {
			return serplens.Errorf(serplens.ECONFLICT, "rank %d already recorded for analysis %d", result.Rank, result.AnalysisID)
		}
	}

	result.ID = s.nextCompetitorID
	s.nextCompetitorID++
	result.ContentHash = hashContent(result.FullContent)

	clone := *result
	s.competitors[result.ID] = &clone
	return nil
}

// FindCompetitorResultsByAnalysis retrieves competitor results sorted by
// rank ascending.
func (s *AnalysisService) FindCompetitorResultsByAnalysis(_ context.Context, analysisID int64) ([]*serplens.CompetitorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := []*serplens.CompetitorResult{}
	for _, c := range s.competitors {
		if c.AnalysisID == analysisID {
			clone := *c
			results = append(results, &clone)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Rank < results[j].Rank
	})
	return results, nil
}

// DeleteCompetitorResultsByAnalysis removes all competitor results for an
// analysis.
func (s *AnalysisService) DeleteCompetitorResultsByAnalysis(_ context.Context, analysisID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.competitors {
		if c.AnalysisID == analysisID {
			delete(s.competitors, id)
		}
	}
	return nil
}

// cloneAnalysis returns a copy whose nested pointers and slices never
// alias stored state, so callers can mutate what they get back.
func cloneAnalysis(a *serplens.Analysis) *serplens.Analysis {
	clone := *a
	if a.CompletedAt != nil {
		completedAt := *a.CompletedAt
		clone.CompletedAt = &completedAt
	}
	clone.Results = cloneOutcome(a.Results)
	return &clone
}

func cloneOutcome(o *serplens.AnalysisOutcome) *serplens.AnalysisOutcome {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Recommendations = append([]string(nil), o.Recommendations...)
	clone.Summary.CommonEntities = append([]serplens.Entity(nil), o.Summary.CommonEntities...)
	return &clone
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}
