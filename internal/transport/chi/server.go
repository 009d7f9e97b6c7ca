// Package chi serves the audience HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/audience/internal/domain"
	"github.com/kailas-cloud/audience/internal/domain/criteria"
	"github.com/kailas-cloud/audience/internal/metrics"
	audienceuc "github.com/kailas-cloud/audience/internal/usecase/audience"
	healthuc "github.com/kailas-cloud/audience/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, req audienceuc.Request) (*audienceuc.Report, error)
	Criteria(query string) (criteria.Criteria, error)
	PoolSize() int
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	audience      Recommender
	health        HealthChecker
	logger        *zap.Logger
	defaultTopK   int
	maxTopK       int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. top_k defaults to defaultTopK and is
// clamped to maxTopK.
func NewServer(audience Recommender, health HealthChecker, defaultTopK, maxTopK int, logger *zap.Logger) *Server {
	s := &Server{
		audience:    audience,
		health:      health,
		logger:      logger,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNoValidProfiles, http.StatusUnprocessableEntity, CodeNoValidProfiles),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrRefinerError, http.StatusBadGateway, CodeRefiner),
	}
	return s
}

// Routes builds the router with the full middleware stack.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommendations", s.Recommend)
		r.Post("/criteria", s.ExtractCriteria)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// Recommend handles POST /v1/recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	topK := s.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rep, err := s.audience.Recommend(ctx, audienceuc.Request{
		Query:    req.Query,
		TopK:     topK,
		Location: req.Location,
		Refine:   req.Refine,
		Option:   req.Option,
	})
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.reportToResponse(rep))
}

// ExtractCriteria handles POST /v1/criteria.
func (s *Server) ExtractCriteria(w http.ResponseWriter, r *http.Request) {
	var req CriteriaRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.audience.Criteria(req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, criteriaToDTO(c))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel text only, never the wrapped internals.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

func (s *Server) reportToResponse(rep *audienceuc.Report) RecommendationResponse {
	items := make([]RecommendationItem, len(rep.Results))
	for i, res := range rep.Results {
		m := res.Member()
		item := RecommendationItem{
			UserID:     m.ID(),
			City:       m.City(),
			Country:    m.Country(),
			Gender:     m.Sex().String(),
			Similarity: res.Score(),
		}
		if age, ok := m.Age(); ok {
			item.Age = &age
		}
		items[i] = item
	}

	st := rep.Resolution
	return RecommendationResponse{
		RunID:         rep.RunID,
		Query:         rep.Query,
		Refined:       rep.Refined,
		NeedsLocation: rep.NeedsLocation,
		Criteria:      criteriaToDTO(rep.Criteria),
		Stats: PipelineStats{
			Pool:     s.audience.PoolSize(),
			Filtered: rep.Filtered,
			Embedded: rep.Embedded,
			Dropped:  st.Dropped,
			Groups: GroupStats{
				Direct:     st.Direct,
				Fallback:   st.Fallback,
				Unresolved: st.Unresolved,
				Mismatched: st.Mismatched,
			},
		},
		Items: items,
	}
}

func criteriaToDTO(c criteria.Criteria) Criteria {
	var out Criteria
	if v, ok := c.MinAge(); ok {
		out.MinAge = &v
	}
	if v, ok := c.MaxAge(); ok {
		out.MaxAge = &v
	}
	if v, ok := c.Gender(); ok {
		g := v.String()
		out.Gender = &g
	}
	if v, ok := c.City(); ok {
		out.City = &v
	}
	return out
}
