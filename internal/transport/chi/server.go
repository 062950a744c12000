// Package chi is the HTTP transport: hand-written chi routes over the tour search
// and health use cases.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/domain/search/mode"
	"github.com/travellive/tourquery/internal/domain/tour"
	logpkg "github.com/travellive/tourquery/internal/logger"
	"github.com/travellive/tourquery/internal/metrics"
	healthuc "github.com/travellive/tourquery/internal/usecase/health"
	toursuc "github.com/travellive/tourquery/internal/usecase/tours"
)

// docsSearchK is the fixed result count of the /docs/search route.
const docsSearchK = 2

const maxBodyBytes = 64 << 10

// TourSearcher runs a tour search.
type TourSearcher interface {
	Search(ctx context.Context, raw string, k int, m mode.Mode) (toursuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options tunes request handling.
type Options struct {
	DefaultK int
	MaxK     int
	APIKeys  []string
}

// Server serves the HTTP API.
type Server struct {
	tours         TourSearcher
	health        HealthChecker
	logger        *zap.Logger
	defaultK      int
	maxK          int
	apiKeys       []string
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(tours TourSearcher, health HealthChecker, logger *zap.Logger, opts Options) *Server {
	if opts.DefaultK < 1 {
		opts.DefaultK = toursuc.DefaultK
	}
	if opts.MaxK < opts.DefaultK {
		opts.MaxK = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		tours:         tours,
		health:        health,
		logger:        logger,
		defaultK:      opts.DefaultK,
		maxK:          opts.MaxK,
		apiKeys:       opts.APIKeys,
		errorHandlers: kindHandlers(),
	}
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/", s.Root)
	r.Post("/docs/search", s.DocsSearch)
	r.Post("/tours/search", s.SearchTours)
	r.Get("/tours/search", s.SearchToursQuery)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
	return r
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

type docsSearchRequest struct {
	UserInput string `json:"user_input"`
}

type docsSearchResponse struct {
	Markdown string `json:"markdown"`
}

// DocsSearch handles POST /docs/search: a Markdown digest of the two closest tours.
func (s *Server) DocsSearch(w http.ResponseWriter, r *http.Request) {
	var req docsSearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserInput == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_input must not be empty")
		return
	}

	ctx, usage := domain.WithSearchUsage(r.Context())
	res, err := s.tours.Search(ctx, req.UserInput, docsSearchK, mode.Markdown)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, docsSearchResponse{Markdown: res.Markdown})
}

type searchRequest struct {
	Query  string `json:"query"`
	K      *int   `json:"k,omitempty"`
	Format string `json:"format,omitempty"`
}

type structuredResponse struct {
	Query  string           `json:"query"`
	Format mode.Mode        `json:"format"`
	Tours  []tour.Projected `json:"tours"`
	Total  int              `json:"total"`
}

type markdownResponse struct {
	Query    string    `json:"query"`
	Format   mode.Mode `json:"format"`
	Markdown string    `json:"markdown"`
	Total    int       `json:"total"`
}

// SearchTours handles POST /tours/search.
func (s *Server) SearchTours(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	k := s.defaultK
	if req.K != nil {
		k = *req.K
	}
	s.search(w, r, req.Query, k, req.Format)
}

// SearchToursQuery handles GET /tours/search?q=&k=&format=.
func (s *Server) SearchToursQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	k := s.defaultK
	if raw := q.Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "k must be an integer")
			return
		}
		k = n
	}
	s.search(w, r, q.Get("q"), k, q.Get("format"))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, raw string, k int, format string) {
	m, ok := mode.Parse(format)
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			`format must be "structured" or "markdown"`)
		return
	}

	ctx, usage := domain.WithSearchUsage(r.Context())
	res, err := s.tours.Search(ctx, raw, s.clampK(k), m)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	if res.Mode == mode.Markdown {
		writeJSON(w, http.StatusOK, markdownResponse{
			Query: res.Query, Format: res.Mode, Markdown: res.Markdown, Total: len(res.Documents),
		})
		return
	}

	tours := res.Tours
	if tours == nil {
		tours = []tour.Projected{}
	}
	writeJSON(w, http.StatusOK, structuredResponse{
		Query: res.Query, Format: res.Mode, Tours: tours, Total: len(res.Documents),
	})
}

func (s *Server) clampK(k int) int {
	return min(max(k, 1), s.maxK)
}

type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: report.Status, Checks: report.Checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.String("code", domain.Code(err)), zap.Error(err))
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		log.Info("request cancelled", zap.Error(err))
		return
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err //nolint:wrapcheck // shown to the caller as-is
	}
	return nil
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.SearchUsage) {
	if usage != nil && usage.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bearerToken(header string) (string, bool) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return header[len(bearerPrefix):], true
}
