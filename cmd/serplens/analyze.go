package main

import (
	"fmt"
	"time"

	"github.com/serplens/serplens"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	config := serplens.AnalysisConfig{
		Keyword:           c.Keyword,
		Country:           c.Country,
		Language:          c.Language,
		EntityExtraction:  c.Entities,
		SentimentAnalysis: c.Sentiment,
	}

	id, err := deps.Runner.StartAnalysis(deps.Ctx, config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serplens.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Started analysis %d for %q\n", id, c.Keyword)

	analysis, err := c.waitForAnalysis(deps, id)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serplens.ErrorMessage(err))
		return err
	}

	if analysis.Status == serplens.StatusFailed {
		reason := "unknown failure"
		if analysis.Results != nil && analysis.Results.Error != "" {
			reason = analysis.Results.Error
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", reason)
		return serplens.Errorf(serplens.EINTERNAL, "analysis %d failed: %s", id, reason)
	}

	projection, err := deps.Runner.GetAnalysisResults(deps.Ctx, id)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serplens.ErrorMessage(err))
		return err
	}

	printReport(deps, projection)
	return nil
}

// waitForAnalysis polls the store until the analysis reaches a terminal
// status, or until the command timeout elapses.
func (c *AnalyzeCmd) waitForAnalysis(deps *Dependencies, id int64) (*serplens.Analysis, error) {
	deadline := time.NewTimer(c.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deps.Ctx.Done():
			return nil, deps.Ctx.Err()
		case <-deadline.C:
			return nil, serplens.Errorf(serplens.ETIMEOUT, "analysis %d did not finish within %s", id, c.Timeout)
		case <-ticker.C:
			analysis, err := deps.Analyses.FindAnalysisByID(deps.Ctx, id)
			if err != nil {
				return nil, err
			}
			if analysis.Status.Terminal() {
				return analysis, nil
			}
		}
	}
}

func printReport(deps *Dependencies, p *serplens.AnalysisProjection) {
	fmt.Fprintf(deps.Stdout, "\nAnalyzed %d competitors for %q\n\n", len(p.Competitors), p.Keyword)

	fmt.Fprintln(deps.Stdout, "Summary")
	fmt.Fprintf(deps.Stdout, "  Average word count:   %d\n", p.Summary.AvgWordCount)
	fmt.Fprintf(deps.Stdout, "  Average title length: %d\n", p.Summary.AvgTitleLength)
	fmt.Fprintf(deps.Stdout, "  Average sentiment:    %.2f\n", p.Summary.AvgSentiment)

	if len(p.Summary.CommonEntities) > 0 {
		fmt.Fprintln(deps.Stdout, "\nCommon entities")
		for _, e := range p.Summary.CommonEntities {
			fmt.Fprintf(deps.Stdout, "  %s (%s, salience %.2f)\n", e.Name, e.Type, e.Salience)
		}
	}

	if len(p.Recommendations) > 0 {
		fmt.Fprintln(deps.Stdout, "\nRecommendations")
		for _, rec := range p.Recommendations {
			fmt.Fprintf(deps.Stdout, "  - %s\n", rec)
		}
	}

	fmt.Fprintln(deps.Stdout, "\nCompetitors")
	for _, comp := range p.Competitors {
		fmt.Fprintf(deps.Stdout, "  %2d. %s  %s (%d words)\n", comp.Rank, comp.Domain, comp.Title, comp.WordCount)
	}
}
