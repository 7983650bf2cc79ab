package routers

import (
	"net/http"

	"talentscout/interview/internal/handlers"
	"talentscout/interview/internal/middleware"
	"talentscout/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler) {
	router.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/auth/login", authHandler.LoginHandler)
}

func CandidateRoutes(router *chi.Mux, candidateHandler *handlers.CandidateHandler, requireAdmin func(http.Handler) http.Handler) {
	router.Route("/candidates", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", candidateHandler.ListHandler)
		r.Get("/stats/summary", candidateHandler.StatsHandler)
		r.Get("/{id}", candidateHandler.GetHandler)
		r.Get("/{id}/scores", candidateHandler.ScoresHandler)
	})
}

// ResumeRoutes keeps analysis open to candidates; keyword configuration and
// stored analyses are admin only.
func ResumeRoutes(router *chi.Mux, resumeHandler *handlers.ResumeHandler, requireAdmin func(http.Handler) http.Handler) {
	router.Route("/resumes", func(r chi.Router) {
		r.Post("/analyze", resumeHandler.AnalyzeHandler)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/keywords", resumeHandler.ListKeywordsHandler)
			r.With(middleware.ValidateRequest[*models.KeywordRequest]()).Post("/keywords", resumeHandler.UpsertKeywordHandler)
			r.Get("/{id}", resumeHandler.GetAnalysisHandler)
		})
	})
}
