package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talentscout/interview/internal/interview"
	"talentscout/interview/internal/middleware"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/utils"
)

type InterviewHandler struct {
	service *interview.Service
	logger  *zap.Logger
}

func NewInterviewHandler(service *interview.Service, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{service: service, logger: logger}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)

	resp, err := h.service.Start(r.Context(), req.Candidate.ToCandidate())
	if err != nil {
		writeError(w, h.logger, err, zap.String("candidate", req.Candidate.Name))
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *InterviewHandler) MessageHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.MessageRequest](r)
	id := chi.URLParam(r, "id")

	requestID := req.RequestID
	if requestID == "" {
		requestID = r.Header.Get("Idempotency-Key")
	}

	resp, err := h.service.Message(r.Context(), id, req.Content, requestID)
	if err != nil {
		writeError(w, h.logger, err, zap.String("interview_id", id), zap.String("request_id", requestID))
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, err := h.service.Status(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("interview_id", id))
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) ScoresHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scores, err := h.service.Scores(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("interview_id", id))
		return
	}
	utils.JSON(w, http.StatusOK, scores)
}

func (h *InterviewHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.service.Report(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("interview_id", id))
		return
	}
	utils.JSON(w, http.StatusOK, report)
}
