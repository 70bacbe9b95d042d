// Package prometheus holds the application metrics and metric-emitting
// decorators for the fetch pipeline.
package prometheus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/serplens/serplens"
	"github.com/serplens/serplens/analyze"
)

// Compile-time interface verification.
var _ analyze.Observer = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	PagesFetched     *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	FetchErrors      *prometheus.CounterVec
	CompetitorsSaved prometheus.Counter
}

// NewMetrics registers the application metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "serplens_analyses_total",
			Help: "The total number of analyses by terminal status",
		}, []string{"status"}),
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "serplens_pages_fetched_total",
			Help: "The total number of competitor page fetches by outcome",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "serplens_fetch_duration_seconds",
			Help:    "Competitor page fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "serplens_fetch_errors_total",
			Help: "The total number of fetch errors by error code",
		}, []string{"code"}),
		CompetitorsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "serplens_competitors_saved_total",
			Help: "The total number of competitor results persisted",
		}),
	}
}

// AnalysisFinished records one analysis reaching a terminal status.
func (m *Metrics) AnalysisFinished(status serplens.Status) {
	m.AnalysesTotal.WithLabelValues(string(status)).Inc()
}

// CompetitorSaved records one persisted competitor result.
func (m *Metrics) CompetitorSaved() {
	m.CompetitorsSaved.Inc()
}

// Compile-time interface verification.
var _ serplens.Fetcher = (*Fetcher)(nil)

// Fetcher decorates a serplens.Fetcher with fetch metrics.
type Fetcher struct {
	next    serplens.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next with metric emission.
func NewFetcher(next serplens.Fetcher, metrics *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: metrics}
}

// Fetch delegates to the wrapped fetcher, recording latency and outcome.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	timer := prometheus.NewTimer(f.metrics.FetchDuration)
	html, err := f.next.Fetch(ctx, url)
	timer.ObserveDuration()

	if err != nil {
		f.metrics.PagesFetched.WithLabelValues("error").Inc()
		f.metrics.FetchErrors.WithLabelValues(serplens.ErrorCode(err)).Inc()
		return "", err
	}
	f.metrics.PagesFetched.WithLabelValues("ok").Inc()
	return html, nil
}
