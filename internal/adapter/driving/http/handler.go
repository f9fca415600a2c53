package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ericfisherdev/formbff/internal/application"
	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
	"github.com/ericfisherdev/formbff/internal/metrics"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	records *application.RecordService
	github  driven.GitHubClient
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. m may be nil.
func NewHandler(
	records *application.RecordService,
	github driven.GitHubClient,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		records: records,
		github:  github,
		metrics: m,
		logger:  logger,
	}
}

// route binds one method and path pattern to a handler.
type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
}

// routes is the API route table.
func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, "/api/form", h.ListRecords},
		{http.MethodGet, "/api/form/{id}", h.GetRecord},
		{http.MethodPost, "/api/form", h.CreateRecord},
		{http.MethodPut, "/api/form/{id}", h.UpdateRecord},
		{http.MethodDelete, "/api/form/{id}", h.DeleteRecord},
		{http.MethodGet, "/api/github/user", h.GitHubUser},
		{http.MethodGet, "/api/github/repos", h.GitHubRepos},
		{http.MethodGet, "/api/health", h.Health},
	}
}

// RouterOptions configures the outer HTTP surface.
type RouterOptions struct {
	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string
	// StaticDir, when set, is served for non-API paths with index.html as
	// the fallback for unknown paths.
	StaticDir string
}

// NewRouter creates an http.Handler with all routes registered and wrapped
// with request ID, logging, recovery, metrics, and CORS middleware.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Recovery innermost so panics are caught before logging.
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(h.logger))
	r.Use(metricsMiddleware(h.metrics))
	r.Use(corsMiddleware(opts.CORSOrigins))
	r.Use(recoveryMiddleware(h.logger))

	for _, rt := range h.routes() {
		r.Method(rt.method, rt.pattern, rt.handler)
	}

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	var static http.Handler
	if opts.StaticDir != "" {
		static = spaHandler(opts.StaticDir)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if static != nil && !isAPIPath(req.URL.Path) && (req.Method == http.MethodGet || req.Method == http.MethodHead) {
			static.ServeHTTP(w, req)
			return
		}
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   formatTime(time.Now()),
	})
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
