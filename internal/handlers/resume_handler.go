package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"talentscout/interview/internal/middleware"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/resume"
	"talentscout/interview/internal/utils"
)

type ResumeHandler struct {
	analyzer *resume.Analyzer
	logger   *zap.Logger
}

func NewResumeHandler(analyzer *resume.Analyzer, logger *zap.Logger) *ResumeHandler {
	return &ResumeHandler{analyzer: analyzer, logger: logger}
}

// AnalyzeHandler accepts a multipart upload with a "file" part and an
// optional "candidate_id" field.
func (h *ResumeHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, resume.DefaultMaxBytes+1<<20)
	if err := r.ParseMultipartForm(resume.DefaultMaxBytes); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: expected a multipart form with a file", models.ErrValidation))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: file is required", models.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, fmt.Errorf("%w: file too large", models.ErrValidation))
			return
		}
		writeError(w, h.logger, err)
		return
	}

	resp, err := h.analyzer.Analyze(r.Context(), header.Filename, data, r.FormValue("candidate_id"))
	if err != nil {
		writeError(w, h.logger, err, zap.String("file_name", header.Filename))
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *ResumeHandler) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, err := h.analyzer.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, zap.String("analysis_id", id))
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *ResumeHandler) ListKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.analyzer.Keywords(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, keywords)
}

func (h *ResumeHandler) UpsertKeywordHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.KeywordRequest](r)
	keyword, err := h.analyzer.UpsertKeyword(r.Context(), *req)
	if err != nil {
		writeError(w, h.logger, err, zap.String("keyword", req.Keyword))
		return
	}
	utils.JSON(w, http.StatusOK, keyword)
}
