package mock

import (
	"context"

	"github.com/serplens/serplens"
)

var _ serplens.AnalysisService = (*AnalysisService)(nil)

// AnalysisService is a mock implementation of serplens.AnalysisService.
type AnalysisService struct {
	CreateAnalysisFn                    func(ctx context.Context, analysis *serplens.Analysis) error
	FindAnalysisByIDFn                  func(ctx context.Context, id int64) (*serplens.Analysis, error)
	FindAnalysesFn                      func(ctx context.Context) ([]*serplens.Analysis, error)
	UpdateAnalysisStatusFn              func(ctx context.Context, id int64, status serplens.Status, results *serplens.AnalysisOutcome) (*serplens.Analysis, error)
	CreateCompetitorResultFn            func(ctx context.Context, result *serplens.CompetitorResult) error
	FindCompetitorResultsByAnalysisFn   func(ctx context.Context, analysisID int64) ([]*serplens.CompetitorResult, error)
	DeleteCompetitorResultsByAnalysisFn func(ctx context.Context, analysisID int64) error
}

func (s *AnalysisService) CreateAnalysis(ctx context.Context, analysis *serplens.Analysis) error {
	return s.CreateAnalysisFn(ctx, analysis)
}

func (s *AnalysisService) FindAnalysisByID(ctx context.Context, id int64) (*serplens.Analysis, error) {
	return s.FindAnalysisByIDFn(ctx, id)
}

func (s *AnalysisService) FindAnalyses(ctx context.Context) ([]*serplens.Analysis, error) {
	return s.FindAnalysesFn(ctx)
}

func (s *AnalysisService) UpdateAnalysisStatus(ctx context.Context, id int64, status serplens.Status, results *serplens.AnalysisOutcome) (*serplens.Analysis, error) {
	return s.UpdateAnalysisStatusFn(ctx, id, status, results)
}

func (s *AnalysisService) CreateCompetitorResult(ctx context.Context, result *serplens.CompetitorResult) error {
	return s.CreateCompetitorResultFn(ctx, result)
}

func (s *AnalysisService) FindCompetitorResultsByAnalysis(ctx context.Context, analysisID int64) ([]*serplens.CompetitorResult, error) {
	return s.FindCompetitorResultsByAnalysisFn(ctx, analysisID)
}

func (s *AnalysisService) DeleteCompetitorResultsByAnalysis(ctx context.Context, analysisID int64) error {
	return s.DeleteCompetitorResultsByAnalysisFn(ctx, analysisID)
}
