package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/serplens/serplens"
	serplenshttp "github.com/serplens/serplens/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runnerMock implements serplenshttp.Runner with function fields.
type runnerMock struct {
	StartAnalysisFn      func(ctx context.Context, config serplens.AnalysisConfig) (int64, error)
	GetAnalysisResultsFn func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error)
	GetAllAnalysesFn     func(ctx context.Context) ([]*serplens.AnalysisProjection, error)
}

func (m *runnerMock) StartAnalysis(ctx context.Context, config serplens.AnalysisConfig) (int64, error) {
	return m.StartAnalysisFn(ctx, config)
}

func (m *runnerMock) GetAnalysisResults(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
	return m.GetAnalysisResultsFn(ctx, id)
}

func (m *runnerMock) GetAllAnalyses(ctx context.Context) ([]*serplens.AnalysisProjection, error) {
	return m.GetAllAnalysesFn(ctx)
}

func newServer(runner serplenshttp.Runner) *serplenshttp.Server {
	s := serplenshttp.NewServer()
	s.Runner = runner
	s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return s
}

func completedProjection() *serplens.AnalysisProjection {
	score := 0.3
	return &serplens.AnalysisProjection{
		ID:       7,
		Keyword:  "best espresso machine",
		Country:  "US",
		Language: "en",
		Status:   serplens.StatusCompleted,
		Competitors: []*serplens.CompetitorResult{
			{
				Rank:            1,
				URL:             "https://www.example.com/espresso",
				Domain:          "example.com",
				Title:           `The "Best" Espresso Machines`,
				MetaDescription: "Our picks, tested.",
				WordCount:       1500,
				Entities:        []serplens.Entity{{Name: "espresso machine", Type: "CONSUMER_GOOD", Salience: 0.8}},
				Sentiment:       &score,
				Headings:        []serplens.Heading{{Level: 1, Text: "The Best Espresso Machines"}},
			},
		},
		Summary: serplens.Summary{
			AvgWordCount:   1500,
			AvgTitleLength: 28,
			CommonEntities: []serplens.Entity{{Name: "espresso machine", Type: "CONSUMER_GOOD", Salience: 0.8, Mentions: 1}},
			TotalPages:     1,
		},
		Recommendations: []string{"Target content length around 1500 words to match top-ranking competitors."},
		CreatedAt:       "2026-08-30T10:00:00Z",
		CompletedAt:     "2026-08-30T10:01:00Z",
	}
}

func TestServer_StartAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("starts and returns id", func(t *testing.T) {
		t.Parallel()

		runner := &runnerMock{
			StartAnalysisFn: func(ctx context.Context, config serplens.AnalysisConfig) (int64, error) {
				assert.Equal(t, "best espresso machine", config.Keyword)
				assert.True(t, config.EntityExtraction)
				return 42, nil
			},
		}
		srv := newServer(runner)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/analysis",
			strings.NewReader(`{"keyword": "best espresso machine", "entityExtraction": true}`))
		srv.ServeHTTP(w, req)

		require.Equal(t, 200, w.Code)
		var body struct {
			Success    bool   `json:"success"`
			AnalysisID int64  `json:"analysisId"`
			Message    string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, int64(42), body.AnalysisID)
		assert.Equal(t, "Analysis started successfully", body.Message)
	})

	t.Run("invalid config is a 400", func(t *testing.T) {
		t.Parallel()

		runner := &runnerMock{
			StartAnalysisFn: func(ctx context.Context, config serplens.AnalysisConfig) (int64, error) {
				return 0, serplens.Errorf(serplens.EINVALID, "keyword required")
			},
		}
		srv := newServer(runner)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/analysis", strings.NewReader(`{}`))
		srv.ServeHTTP(w, req)

		require.Equal(t, 400, w.Code)
		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "keyword required", body.Error)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		t.Parallel()

		srv := newServer(&runnerMock{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/analysis", strings.NewReader(`{not json`))
		srv.ServeHTTP(w, req)

		assert.Equal(t, 400, w.Code)
	})
}

func TestServer_GetAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("returns projection", func(t *testing.T) {
		t.Parallel()

		runner := &runnerMock{
			GetAnalysisResultsFn: func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
				assert.Equal(t, int64(7), id)
				return completedProjection(), nil
			},
		}
		srv := newServer(runner)

		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/7", nil))

		require.Equal(t, 200, w.Code)
		var body serplens.AnalysisProjection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "best espresso machine", body.Keyword)
		assert.Equal(t, serplens.StatusCompleted, body.Status)
		require.Len(t, body.Competitors, 1)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		t.Parallel()

		srv := newServer(&runnerMock{})
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/abc", nil))
		assert.Equal(t, 400, w.Code)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		t.Parallel()

		runner := &runnerMock{
			GetAnalysisResultsFn: func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
				return nil, serplens.Errorf(serplens.ENOTFOUND, "analysis %d not found", id)
			},
		}
		srv := newServer(runner)

		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/99", nil))
		assert.Equal(t, 404, w.Code)
	})
}

func TestServer_ListAnalyses(t *testing.T) {
	t.Parallel()

	runner := &runnerMock{
		GetAllAnalysesFn: func(ctx context.Context) ([]*serplens.AnalysisProjection, error) {
			return []*serplens.AnalysisProjection{completedProjection()}, nil
		},
	}
	srv := newServer(runner)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analyses", nil))

	require.Equal(t, 200, w.Code)
	var body []*serplens.AnalysisProjection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, int64(7), body[0].ID)
}

func TestServer_ExportCSV(t *testing.T) {
	t.Parallel()

	runner := &runnerMock{
		GetAnalysisResultsFn: func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
			return completedProjection(), nil
		},
	}
	srv := newServer(runner)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/7/export/csv", nil))

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seo-analysis-7.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Rank,Domain,URL,Title,Meta Description,Word Count,Title Length,Sentiment Score,Entity Count", lines[0])
	assert.Contains(t, lines[1], "example.com")
	assert.Contains(t, lines[1], "0.3")
	// Quotes inside the title are escaped per RFC 4180.
	assert.Contains(t, lines[1], `"The ""Best"" Espresso Machines"`)
}

func TestServer_ExportJSON(t *testing.T) {
	t.Parallel()

	runner := &runnerMock{
		GetAnalysisResultsFn: func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
			return completedProjection(), nil
		},
	}
	srv := newServer(runner)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/7/export/json", nil))

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seo-analysis-7.json")
	var body serplens.AnalysisProjection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "best espresso machine", body.Keyword)
}

func TestServer_ExportHTML(t *testing.T) {
	t.Parallel()

	runner := &runnerMock{
		GetAnalysisResultsFn: func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
			return completedProjection(), nil
		},
	}
	srv := newServer(runner)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/7/export/html", nil))

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
	html := w.Body.String()
	assert.Contains(t, html, "SEO Competitor Analysis Report")
	assert.Contains(t, html, "best espresso machine")
	assert.Contains(t, html, "1500")
	// Title text is HTML-escaped by the template engine.
	assert.Contains(t, html, "The &#34;Best&#34; Espresso Machines")
	assert.Contains(t, html, "Target content length around 1500 words")
}

func TestServer_ExportFullContent(t *testing.T) {
	t.Parallel()

	runner := &runnerMock{
		GetAnalysisResultsFn: func(ctx context.Context, id int64) (*serplens.AnalysisProjection, error) {
			p := completedProjection()
			p.Competitors[0].FullContent = "<html><body>raw markup</body></html>"
			return p, nil
		},
	}
	srv := newServer(runner)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/analysis/7/export/fullcontent", nil))

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "full-content-best-espresso-machine-7.json")

	var body struct {
		Keyword     string `json:"keyword"`
		AnalysisID  int64  `json:"analysisId"`
		Competitors []struct {
			Rank        int    `json:"rank"`
			FullContent string `json:"fullContent"`
		} `json:"competitors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.AnalysisID)
	require.Len(t, body.Competitors, 1)
	assert.Equal(t, "<html><body>raw markup</body></html>", body.Competitors[0].FullContent)
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	srv := newServer(&runnerMock{})
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, 200, w.Code)
}
