package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/serplens/serplens"
)

// Compile-time interface verification.
var _ serplens.AnalysisService = (*AnalysisService)(nil)

// AnalysisService implements serplens.AnalysisService using SQLite.
type AnalysisService struct {
	db *DB
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(db *DB) *AnalysisService {
	return &AnalysisService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}

// CreateAnalysis creates a new analysis in pending state.
func (s *AnalysisService) CreateAnalysis(ctx context.Context, analysis *serplens.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return err
	}

	analysis.Status = serplens.StatusPending
	analysis.Results = nil
	analysis.CreatedAt = time.Now().UTC()
	analysis.CompletedAt = nil

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (keyword, country, language, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, analysis.Keyword, analysis.Country, analysis.Language, analysis.Status,
		analysis.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	analysis.ID, err = result.LastInsertId()
	return err
}

// FindAnalysisByID retrieves an analysis by ID.
func (s *AnalysisService) FindAnalysisByID(ctx context.Context, id int64) (*serplens.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, keyword, country, language, status, results, created_at, completed_at
		FROM analyses
		WHERE id = ?
	`, id)

	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, serplens.Errorf(serplens.ENOTFOUND, "analysis %d not found", id)
	}
	return analysis, err
}

// FindAnalyses retrieves all analyses, most recently created first.
func (s *AnalysisService) FindAnalyses(ctx context.Context) ([]*serplens.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, country, language, status, results, created_at, completed_at
		FROM analyses
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*serplens.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

// UpdateAnalysisStatus transitions an analysis to status, attaching results
// when provided. Transitions that move backwards or leave a terminal state
// are rejected.
func (s *AnalysisService) UpdateAnalysisStatus(ctx context.Context, id int64, status serplens.Status, results *serplens.AnalysisOutcome) (*serplens.Analysis, error) {
	if !status.Valid() {
		return nil, serplens.Errorf(serplens.EINVALID, "unknown status %q", status)
	}

	analysis, err := s.FindAnalysisByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !analysis.Status.CanTransition(status) {
		return nil, serplens.Errorf(serplens.EINVALID, "cannot transition analysis %d from %s to %s", id, analysis.Status, status)
	}

	analysis.Status = status
	if results != nil {
		analysis.Results = results
	}
	var completedAt any
	if status.Terminal() {
		now := time.Now().UTC()
		analysis.CompletedAt = &now
		completedAt = now.Format(time.RFC3339)
	}

	var resultsJSON any
	if analysis.Results != nil {
		encoded, err := marshalColumn(analysis.Results, "results")
		if err != nil {
			return nil, err
		}
		resultsJSON = encoded
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE analyses
		SET status = ?, results = ?, completed_at = ?
		WHERE id = ?
	`, analysis.Status, resultsJSON, completedAt, id)
	if err != nil {
		return nil, err
	}

	return analysis, nil
}

// CreateCompetitorResult persists a scraped competitor page, assigning its
// ID and ContentHash.
func (s *AnalysisService) CreateCompetitorResult(ctx context.Context, result *serplens.CompetitorResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	result.ContentHash = hashContent(result.FullContent)

	// Nil slices would round-trip as JSON null; store empty collections.
	if result.Entities == nil {
		result.Entities = []serplens.Entity{}
	}
	if result.Headings == nil {
		result.Headings = []serplens.Heading{}
	}
	if result.Images == nil {
		result.Images = []serplens.Image{}
	}
	if result.StructuredData == nil {
		result.StructuredData = []map[string]any{}
	}

	entities, err := marshalColumn(result.Entities, "entities")
	if err != nil {
		return err
	}
	headings, err := marshalColumn(result.Headings, "headings")
	if err != nil {
		return err
	}
	images, err := marshalColumn(result.Images, "images")
	if err != nil {
		return err
	}
	structuredData, err := marshalColumn(result.StructuredData, "structured_data")
	if err != nil {
		return err
	}
	styledElements, err := marshalColumn(result.StyledElements, "styled_elements")
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO competitor_results (
			analysis_id, rank, url, domain, title, meta_description,
			content, full_content, content_hash, word_count,
			entities, sentiment, headings, images,
			internal_links, external_links, structured_data, styled_elements
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.AnalysisID, result.Rank, result.URL, result.Domain, result.Title, result.MetaDescription,
		result.Content, result.FullContent, result.ContentHash, result.WordCount,
		entities, result.Sentiment, headings, images,
		result.Links.Internal, result.Links.External, structuredData, styledElements)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return serplens.Errorf(serplens.ECONFLICT, "rank %d already recorded for analysis %d", result.Rank, result.AnalysisID)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return serplens.Errorf(serplens.ENOTFOUND, "analysis %d not found", result.AnalysisID)
		}
		return err
	}

	result.ID, err = res.LastInsertId()
	return err
}

// FindCompetitorResultsByAnalysis retrieves all competitor results for an
// analysis, ordered by rank.
func (s *AnalysisService) FindCompetitorResultsByAnalysis(ctx context.Context, analysisID int64) ([]*serplens.CompetitorResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, analysis_id, rank, url, domain, title, meta_description,
			content, full_content, content_hash, word_count,
			entities, sentiment, headings, images,
			internal_links, external_links, structured_data, styled_elements
		FROM competitor_results
		WHERE analysis_id = ?
		ORDER BY rank ASC
	`, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*serplens.CompetitorResult
	for rows.Next() {
		var (
			result         serplens.CompetitorResult
			sentiment      sql.NullFloat64
			entities       string
			headings       string
			images         string
			structuredData string
			styledElements string
		)
		if err := rows.Scan(&result.ID, &result.AnalysisID, &result.Rank, &result.URL, &result.Domain,
			&result.Title, &result.MetaDescription, &result.Content, &result.FullContent,
			&result.ContentHash, &result.WordCount, &entities, &sentiment, &headings, &images,
			&result.Links.Internal, &result.Links.External, &structuredData, &styledElements); err != nil {
			return nil, err
		}

		result.Entities = []serplens.Entity{}
		if err := unmarshalColumn(entities, "entities", &result.Entities); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(headings, "headings", &result.Headings); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(images, "images", &result.Images); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(structuredData, "structured_data", &result.StructuredData); err != nil {
			return nil, err
		}
		if err := unmarshalColumn(styledElements, "styled_elements", &result.StyledElements); err != nil {
			return nil, err
		}
		if sentiment.Valid {
			result.Sentiment = &sentiment.Float64
		}

		results = append(results, &result)
	}

	return results, rows.Err()
}

// DeleteCompetitorResultsByAnalysis removes all competitor results for an
// analysis.
func (s *AnalysisService) DeleteCompetitorResultsByAnalysis(ctx context.Context, analysisID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM competitor_results WHERE analysis_id = ?", analysisID)
	return err
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*serplens.Analysis, error) {
	var (
		analysis    serplens.Analysis
		results     sql.NullString
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&analysis.ID, &analysis.Keyword, &analysis.Country, &analysis.Language,
		&analysis.Status, &results, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	if results.Valid {
		analysis.Results = &serplens.AnalysisOutcome{}
		if err := unmarshalColumn(results.String, "results", analysis.Results); err != nil {
			return nil, err
		}
	}

	var err error
	analysis.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseRFC3339(completedAt.String, "completed_at")
		if err != nil {
			return nil, err
		}
		analysis.CompletedAt = &t
	}

	return &analysis, nil
}
