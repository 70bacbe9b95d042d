package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serplens/serplens"
)

// ShutdownTimeout is the grace period for draining connections on Close.
const ShutdownTimeout = 5 * time.Second

// Runner drives analysis pipelines and serves their projections. It is
// implemented by analyze.Runner.
type Runner interface {
	StartAnalysis(ctx context.Context, config serplens.AnalysisConfig) (int64, error)
	GetAnalysisResults(ctx context.Context, id int64) (*serplens.AnalysisProjection, error)
	GetAllAnalyses(ctx context.Context) ([]*serplens.AnalysisProjection, error)
}

// Server exposes the analysis API over HTTP.
type Server struct {
	server *http.Server
	router chi.Router
	ln     net.Listener

	Addr   string
	Runner Runner
	Logger *slog.Logger
}

// NewServer creates a Server with its routes registered. The Runner field
// must be set before Open.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{},
		router: chi.NewRouter(),
	}

	s.router.Use(s.requestLogger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analysis", s.handleStartAnalysis)
		r.Get("/analyses", s.handleListAnalyses)
		r.Route("/analysis/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetAnalysis)
			r.Get("/export/csv", s.handleExportCSV)
			r.Get("/export/json", s.handleExportJSON)
			r.Get("/export/html", s.handleExportHTML)
			r.Get("/export/fullcontent", s.handleExportFullContent)
		})
	})

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.server.Handler = s.router
	return s
}

// Open begins listening on Addr. It returns once the listener is bound;
// serving continues on a background goroutine.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger().Error("http server terminated", "error", err)
		}
	}()
	return nil
}

// URL returns the base URL of the bound listener.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// ServeHTTP lets the Server be used directly as a handler in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger().Info("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	var config serplens.AnalysisConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	id, err := s.Runner.StartAnalysis(r.Context(), config)
	if err != nil {
		status := http.StatusInternalServerError
		if serplens.ErrorCode(err) == serplens.EINVALID {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{
			"success": false,
			"error":   serplens.ErrorMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"analysisId": id,
		"message":    "Analysis started successfully",
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	projection, ok := s.findProjection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	projections, err := s.Runner.GetAllAnalyses(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projections)
}

// findProjection parses the id route parameter and loads the projection,
// writing the error response itself when either step fails.
func (s *Server) findProjection(w http.ResponseWriter, r *http.Request) (*serplens.AnalysisProjection, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid analysis ID"})
		return nil, false
	}

	projection, err := s.Runner.GetAnalysisResults(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return projection, true
}

// writeError maps domain error codes to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := serplens.ErrorCode(err)
	status, known := errorStatus[code]
	if !known {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		s.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": serplens.ErrorMessage(err)})
}

var errorStatus = map[string]int{
	serplens.EINVALID:     http.StatusBadRequest,
	serplens.ENOTFOUND:    http.StatusNotFound,
	serplens.ECONFLICT:    http.StatusConflict,
	serplens.ENORESULTS:   http.StatusNotFound,
	serplens.ETIMEOUT:     http.StatusGatewayTimeout,
	serplens.EUNAVAILABLE: http.StatusBadGateway,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
