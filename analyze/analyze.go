// Package analyze provides the keyword-analysis orchestrator. It drives
// the search -> scrape -> language-analysis -> aggregate pipeline for each
// submitted keyword, with per-competitor fault isolation and rate limiting.
package analyze

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/serplens/serplens"
	"golang.org/x/sync/errgroup"
)

// DefaultCompetitorDelay is the pause between competitor iterations,
// throttling calls to the external search and language providers.
const DefaultCompetitorDelay = 500 * time.Millisecond

// projectionConcurrency bounds the fan-out when joining competitor lists
// for the list-all projection.
const projectionConcurrency = 4

// Observer receives pipeline lifecycle events, typically for metrics.
type Observer interface {
	// AnalysisFinished is called once per run with its terminal status.
	AnalysisFinished(status serplens.Status)

	// CompetitorSaved is called for each persisted competitor result.
	CompetitorSaved()
}

// Runner orchestrates analysis runs. Each run executes as one detached
// goroutine; progress is observable only by polling the stored Analysis.
type Runner struct {
	Store    serplens.AnalysisService
	Search   serplens.SearchService
	Language serplens.LanguageService
	Scraper  serplens.Scraper

	// Limiter paces competitor iterations. Defaults to one per
	// DefaultCompetitorDelay when nil; tests inject a zero-delay policy.
	Limiter serplens.RateLimiter

	// Observer receives pipeline lifecycle events. Optional.
	Observer Observer

	Logger *slog.Logger

	mu sync.Mutex
	wg sync.WaitGroup
	// tasks holds cancel handles for in-flight runs, keyed by analysis id.
	// Nothing cancels them today; the handle keeps a cancellation feature
	// addable without protocol changes.
	tasks map[int64]context.CancelFunc
}

// StartAnalysis validates the config, creates a pending Analysis, and
// launches the pipeline as a detached task. It returns the new analysis id
// immediately; callers observe completion by polling. A failure inside the
// detached task transitions the analysis to failed and is never returned
// here.
func (r *Runner) StartAnalysis(ctx context.Context, config serplens.AnalysisConfig) (int64, error) {
	if err := config.Validate(); err != nil {
		return 0, err
	}

	analysis := &serplens.Analysis{
		Keyword:  config.Keyword,
		Country:  config.Country,
		Language: config.Language,
	}
	if err := r.Store.CreateAnalysis(ctx, analysis); err != nil {
		return 0, err
	}

	// The run must outlive the submitting request.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	r.mu.Lock()
	if r.tasks == nil {
		r.tasks = make(map[int64]context.CancelFunc)
	}
	r.tasks[analysis.ID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.tasks, analysis.ID)
			r.mu.Unlock()
		}()

		if err := r.processAnalysis(runCtx, analysis.ID, config); err != nil {
			r.logger().Error("analysis failed", "id", analysis.ID, "keyword", config.Keyword, "error", err)
			outcome := &serplens.AnalysisOutcome{Error: serplens.ErrorMessage(err)}
			if _, uerr := r.Store.UpdateAnalysisStatus(runCtx, analysis.ID, serplens.StatusFailed, outcome); uerr != nil {
				r.logger().Error("failed to record analysis failure", "id", analysis.ID, "error", uerr)
			}
			if r.Observer != nil {
				r.Observer.AnalysisFinished(serplens.StatusFailed)
			}
		}
	}()

	return analysis.ID, nil
}

// processAnalysis runs the pipeline for one analysis. Fatal errors are
// returned to the caller, which records the failed status; per-competitor
// failures are logged and skipped.
func (r *Runner) processAnalysis(ctx context.Context, id int64, config serplens.AnalysisConfig) error {
	if _, err := r.Store.UpdateAnalysisStatus(ctx, id, serplens.StatusProcessing, nil); err != nil {
		return err
	}

	r.logger().Info("starting search", "id", id, "keyword", config.Keyword)
	results, err := r.Search.Search(ctx, serplens.SearchRequest{
		Keyword:  config.Keyword,
		Country:  config.Country,
		Language: config.Language,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return serplens.Errorf(serplens.ENORESULTS, "no search results found for %q", config.Keyword)
	}

	saved := 0
	for i, result := range results {
		if i > 0 {
			if err := r.limiterWait(ctx); err != nil {
				return err
			}
		}

		rank := i + 1
		page, err := r.Scraper.ScrapePage(ctx, result.Link)
		if err != nil {
			// The competitor is skipped outright; its rank stays vacant.
			r.logger().Warn("skipping competitor", "id", id, "rank", rank, "url", result.Link, "error", err)
			continue
		}

		competitor := r.buildCompetitor(ctx, id, rank, result, page, config)
		if err := r.Store.CreateCompetitorResult(ctx, competitor); err != nil {
			return err
		}
		saved++
		if r.Observer != nil {
			r.Observer.CompetitorSaved()
		}
	}

	competitors, err := r.Store.FindCompetitorResultsByAnalysis(ctx, id)
	if err != nil {
		return err
	}

	outcome := &serplens.AnalysisOutcome{
		Summary:            serplens.Summarize(competitors),
		Recommendations:    serplens.Recommend(competitors, config.Keyword),
		TotalCompetitors:   len(competitors),
		SearchResultsCount: len(results),
	}
	if _, err := r.Store.UpdateAnalysisStatus(ctx, id, serplens.StatusCompleted, outcome); err != nil {
		return err
	}

	if r.Observer != nil {
		r.Observer.AnalysisFinished(serplens.StatusCompleted)
	}
	r.logger().Info("analysis completed", "id", id, "competitors", saved, "searchResults", len(results))
	return nil
}

// buildCompetitor assembles a CompetitorResult from a scraped page,
// running the optional language-analysis steps. Language failures degrade
// the record instead of aborting the run.
func (r *Runner) buildCompetitor(ctx context.Context, analysisID int64, rank int, result serplens.SearchResult, page *serplens.ScrapedPage, config serplens.AnalysisConfig) *serplens.CompetitorResult {
	entities := []serplens.Entity{}
	if config.EntityExtraction && page.Content != "" && r.Language != nil {
		found, err := r.Language.Entities(ctx, page.Content)
		if err != nil {
			r.logger().Warn("entity extraction failed", "id", analysisID, "url", result.Link, "error", err)
		} else {
			entities = found
		}
	}

	var sentimentScore *float64
	if config.SentimentAnalysis && page.Content != "" && r.Language != nil {
		sentiment, err := r.Language.Sentiment(ctx, page.Content)
		if err != nil {
			r.logger().Warn("sentiment analysis failed", "id", analysisID, "url", result.Link, "error", err)
		} else if sentiment != nil {
			score := sentiment.Score
			sentimentScore = &score
		}
	}

	title := page.Title
	if title == "" {
		title = result.Title
	}
	description := page.MetaDescription
	if description == "" {
		description = result.Snippet
	}

	return &serplens.CompetitorResult{
		AnalysisID:      analysisID,
		Rank:            rank,
		URL:             result.Link,
		Domain:          domainOf(result.Link),
		Title:           title,
		MetaDescription: description,
		Content:         page.Content,
		FullContent:     page.FullContent,
		WordCount:       page.WordCount,
		Entities:        entities,
		Sentiment:       sentimentScore,
		Headings:        page.Headings,
		Images:          page.Images,
		Links:           page.Links,
		StructuredData:  page.StructuredData,
		StyledElements:  page.StyledElements,
	}
}

// GetAnalysisResults returns the full current projection for one analysis,
// reflecting whatever state the pipeline has reached.
func (r *Runner) GetAnalysisResults(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
	analysis, err := r.Store.FindAnalysisByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.projection(ctx, analysis)
}

// GetAllAnalyses returns projections for every analysis, most recently
// created first.
func (r *Runner) GetAllAnalyses(ctx context.Context) ([]*serplens.AnalysisProjection, error) {
	analyses, err := r.Store.FindAnalyses(ctx)
	if err != nil {
		return nil, err
	}

	projections := make([]*serplens.AnalysisProjection, len(analyses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(projectionConcurrency)
	for i, analysis := range analyses {
		g.Go(func() error {
			p, err := r.projection(gctx, analysis)
			if err != nil {
				return err
			}
			projections[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return projections, nil
}

// projection joins an analysis with its competitors, normalizing missing
// summary and recommendations to empty defaults until the run completes.
func (r *Runner) projection(ctx context.Context, analysis *serplens.Analysis) (*serplens.AnalysisProjection, error) {
	competitors, err := r.Store.FindCompetitorResultsByAnalysis(ctx, analysis.ID)
	if err != nil {
		return nil, err
	}

	p := &serplens.AnalysisProjection{
		ID:              analysis.ID,
		Keyword:         analysis.Keyword,
		Country:         analysis.Country,
		Language:        analysis.Language,
		Status:          analysis.Status,
		Competitors:     competitors,
		Summary:         serplens.Summary{CommonEntities: []serplens.Entity{}},
		Recommendations: []string{},
		CreatedAt:       analysis.CreatedAt.Format(time.RFC3339),
	}
	if analysis.Results != nil && analysis.Status == serplens.StatusCompleted {
		p.Summary = analysis.Results.Summary
		p.Recommendations = analysis.Results.Recommendations
	}
	if analysis.CompletedAt != nil {
		p.CompletedAt = analysis.CompletedAt.Format(time.RFC3339)
	}
	return p, nil
}

// Active returns the ids of analyses whose pipelines are still running.
func (r *Runner) Active() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	return ids
}

// Close waits for all in-flight runs to finish.
func (r *Runner) Close() error {
	r.wg.Wait()
	return nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) limiterWait(ctx context.Context) error {
	limiter := r.Limiter
	if limiter == nil {
		limiter = newSleepLimiter(DefaultCompetitorDelay)
	}
	return limiter.Wait(ctx)
}

// domainOf derives the display domain for a URL: the hostname with a
// leading "www." stripped, or the raw input when it does not parse.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// sleepLimiter is the fallback pacing policy when none is injected.
type sleepLimiter struct {
	interval time.Duration
}

func newSleepLimiter(d time.Duration) *sleepLimiter {
	return &sleepLimiter{interval: d}
}

func (l *sleepLimiter) Wait(ctx context.Context) error {
	timer := time.NewTimer(l.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
