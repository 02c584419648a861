// Package chi exposes the matchd HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/talentgrid/matchd/internal/domain"
	healthuc "github.com/talentgrid/matchd/internal/usecase/health"
	indexuc "github.com/talentgrid/matchd/internal/usecase/index"
	rankinguc "github.com/talentgrid/matchd/internal/usecase/ranking"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest           = "bad_request"
	codeInvalidQuery         = "invalid_query"
	codeTenantRequired       = "tenant_required"
	codeCandidateNotFound    = "candidate_not_found"
	codeStoreUnavailable     = "store_unavailable"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeInternalError        = "internal_error"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sentinelStatus maps a domain sentinel to an HTTP status and error code.
type sentinelStatus struct {
	err    error
	status int
	code   string
}

// Server wires the use case services to HTTP handlers.
type Server struct {
	ranking   *rankinguc.Service
	index     *indexuc.Service
	health    *healthuc.Service
	logger    *zap.Logger
	sentinels []sentinelStatus
}

// NewServer creates an HTTP API server.
func NewServer(
	ranking *rankinguc.Service,
	index *indexuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		ranking: ranking,
		index:   index,
		health:  health,
		logger:  logger,
		sentinels: []sentinelStatus{
			{domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery},
			{domain.ErrInvalidCandidate, http.StatusBadRequest, codeBadRequest},
			{domain.ErrTenantRequired, http.StatusBadRequest, codeTenantRequired},
			{domain.ErrDimensionMismatch, http.StatusBadRequest, codeBadRequest},
			{domain.ErrCandidateNotFound, http.StatusNotFound, codeCandidateNotFound},
			{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
			{domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable},
		},
	}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Put("/candidates", s.handleUpsertCandidate)
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Post("/backfill", s.handleBackfill)
			r.Delete("/candidates", s.handleClearTenant)
		})
	})
}

// --- search ---

type searchRequest struct {
	TenantID        string   `json:"tenant_id"`
	Query           string   `json:"query"`
	Location        string   `json:"location,omitempty"`
	ExperienceYears *float64 `json:"experience_years,omitempty"`
}

type matchDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	Education       string   `json:"education,omitempty"`
	Location        string   `json:"location,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	SimilarityScore float64  `json:"similarity_score"`
}

type searchResponse struct {
	Matches  []matchDTO `json:"matches"`
	Analysis string     `json:"analysis"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.ranking.Search(r.Context(), domain.Query{
		TenantID:           req.TenantID,
		Text:               req.Query,
		Location:           req.Location,
		MinExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := searchResponse{
		Matches:  make([]matchDTO, len(result.Matches)),
		Analysis: result.Analysis,
	}
	for i, m := range result.Matches {
		resp.Matches[i] = matchToDTO(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func matchToDTO(m domain.MatchResult) matchDTO {
	c := m.Candidate
	return matchDTO{
		ID:              c.ID,
		Name:            c.Name,
		Skills:          c.Skills,
		Experience:      c.Experience,
		Education:       c.Education,
		Location:        c.Location,
		Summary:         c.Summary,
		SimilarityScore: m.SimilarityScore,
	}
}

// --- candidates ---

type candidateRequest struct {
	ID         string   `json:"id,omitempty"`
	TenantID   string   `json:"tenant_id"`
	Name       string   `json:"name"`
	Skills     []string `json:"skills,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Education  string   `json:"education,omitempty"`
	Location   string   `json:"location,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

type upsertResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

func (s *Server) handleUpsertCandidate(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	stored, created, err := s.index.Upsert(r.Context(), domain.CandidateRecord{
		ID:         req.ID,
		TenantID:   req.TenantID,
		Name:       req.Name,
		Skills:     req.Skills,
		Experience: req.Experience,
		Education:  req.Education,
		Location:   req.Location,
		Summary:    req.Summary,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, upsertResponse{ID: stored.ID, Created: created})
}

// --- tenant maintenance ---

type backfillResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	updated, err := s.index.Backfill(r.Context(), tenantID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backfillResponse{Updated: updated})
}

type clearResponse struct {
	Deleted int `json:"deleted"`
}

func (s *Server) handleClearTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	deleted, err := s.index.Clear(r.Context(), tenantID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Deleted: deleted})
}

// --- health ---

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// --- helpers ---

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range s.sentinels {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}

	s.logger.Error("Unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
