package serplens

import (
	"context"
	"time"
)

// Status represents the lifecycle state of an Analysis.
type Status string

// Analysis lifecycle states. Transitions are monotonic:
// pending -> processing -> {completed | failed}.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether a record in status s may move to next.
// The lifecycle is one-directional; terminal states accept no transition.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Analysis represents one keyword research run.
type Analysis struct {
	ID       int64  `json:"id"`
	Keyword  string `json:"keyword"`
	Country  string `json:"country"`
	Language string `json:"language"`
	Status   Status `json:"status"`

	// Results is set once the analysis reaches a terminal status.
	Results *AnalysisOutcome `json:"results,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Validate returns an error if the analysis contains invalid fields.
func (a *Analysis) Validate() error {
	if a.Keyword == "" {
		return Errorf(EINVALID, "analysis keyword required")
	}
	return nil
}

// AnalysisOutcome is the terminal payload attached to an Analysis.
// On completion Summary and Recommendations are populated; on failure
// only Error is set.
type AnalysisOutcome struct {
	Summary            Summary  `json:"summary"`
	Recommendations    []string `json:"recommendations"`
	TotalCompetitors   int      `json:"totalCompetitors"`
	SearchResultsCount int      `json:"searchResultsCount"`
	Error              string   `json:"error,omitempty"`
}

// AnalysisConfig carries the submission parameters for a new analysis.
// Entity extraction, sentiment analysis and image analysis are independent
// toggles; credentials ride along for boundary validation but providers
// authenticate with their construction-time credentials.
type AnalysisConfig struct {
	Keyword           string `json:"keyword"`
	Country           string `json:"country"`
	Language          string `json:"language"`
	EntityExtraction  bool   `json:"entityExtraction"`
	SentimentAnalysis bool   `json:"sentimentAnalysis"`
	ImageAnalysis     bool   `json:"imageAnalysis"`
	APIKey            string `json:"googleApiKey,omitempty"`
	SearchEngineID    string `json:"googleCseId,omitempty"`
}

// Validate returns an error if the config cannot start an analysis.
// Country and language default to "US" and "en" when unset.
func (c *AnalysisConfig) Validate() error {
	if c.Keyword == "" {
		return Errorf(EINVALID, "keyword required")
	}
	if c.Country == "" {
		c.Country = "US"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	return nil
}

// AnalysisProjection is the read-only view of an Analysis joined with its
// competitors, served by the polling endpoints. Summary and Recommendations
// are zero-valued until the analysis completes.
type AnalysisProjection struct {
	ID              int64               `json:"id"`
	Keyword         string              `json:"keyword"`
	Country         string              `json:"country"`
	Language        string              `json:"language"`
	Status          Status              `json:"status"`
	Competitors     []*CompetitorResult `json:"competitors"`
	Summary         Summary             `json:"summary"`
	Recommendations []string            `json:"recommendations"`
	CreatedAt       string              `json:"createdAt"`
	CompletedAt     string              `json:"completedAt,omitempty"`
}

// AnalysisService is the keyed storage contract for analyses and their
// competitor results. The store is the sole mutator of persisted state and
// must serialize id allocation and per-record writes. Any keyed store
// satisfying these semantics is substitutable.
type AnalysisService interface {
	// CreateAnalysis persists a new analysis in pending state, assigning
	// its ID and CreatedAt.
	CreateAnalysis(ctx context.Context, analysis *Analysis) error

	// FindAnalysisByID retrieves an analysis by ID.
	// Returns ENOTFOUND if the analysis does not exist.
	FindAnalysisByID(ctx context.Context, id int64) (*Analysis, error)

	// FindAnalyses retrieves all analyses, most recently created first.
	FindAnalyses(ctx context.Context) ([]*Analysis, error)

	// UpdateAnalysisStatus transitions an analysis to status, attaching
	// results if non-nil. CompletedAt is set when the status is terminal.
	// Returns ENOTFOUND if the analysis does not exist and EINVALID if the
	// transition violates the pending->processing->terminal lifecycle.
	UpdateAnalysisStatus(ctx context.Context, id int64, status Status, results *AnalysisOutcome) (*Analysis, error)

	// CreateCompetitorResult persists a scraped competitor page, assigning
	// its ID and content hash.
	CreateCompetitorResult(ctx context.Context, result *CompetitorResult) error

	// FindCompetitorResultsByAnalysis retrieves all competitor results for
	// an analysis, sorted by rank ascending.
	FindCompetitorResultsByAnalysis(ctx context.Context, analysisID int64) ([]*CompetitorResult, error)

	// DeleteCompetitorResultsByAnalysis removes all competitor results for
	// an analysis.
	DeleteCompetitorResultsByAnalysis(ctx context.Context, analysisID int64) error
}
