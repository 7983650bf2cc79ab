package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talentscout/interview/internal/interview"
	"talentscout/interview/internal/utils"
)

// CandidateHandler serves the admin dashboard reads.
type CandidateHandler struct {
	service *interview.Service
	logger  *zap.Logger
}

func NewCandidateHandler(service *interview.Service, logger *zap.Logger) *CandidateHandler {
	return &CandidateHandler{service: service, logger: logger}
}

func (h *CandidateHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.service.ListCandidates(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, candidates)
}

func (h *CandidateHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	candidate, err := h.service.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("candidate_id", id))
		return
	}
	utils.JSON(w, http.StatusOK, candidate)
}

func (h *CandidateHandler) ScoresHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scores, err := h.service.CandidateScores(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("candidate_id", id))
		return
	}
	utils.JSON(w, http.StatusOK, scores)
}

func (h *CandidateHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}
