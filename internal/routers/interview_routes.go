package routers

import (
	"net/http"

	"talentscout/interview/internal/handlers"
	"talentscout/interview/internal/middleware"
	"talentscout/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

// InterviewRoutes registers the candidate-facing session API. Scores and the
// report are admin reads and go through requireAdmin.
func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, requireAdmin func(http.Handler) http.Handler) {
	router.Route("/interviews", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.MessageRequest]()).Post("/{id}/message", interviewHandler.MessageHandler)
		r.Get("/{id}/status", interviewHandler.StatusHandler)
		r.Get("/{id}/ws", interviewHandler.ChatWSHandler)
		r.With(requireAdmin).Get("/{id}/scores", interviewHandler.ScoresHandler)
		r.With(requireAdmin).Get("/{id}/report", interviewHandler.ReportHandler)
	})
}
