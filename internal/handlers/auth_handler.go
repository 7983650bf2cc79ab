package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"talentscout/interview/internal/auth"
	"talentscout/interview/internal/middleware"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/utils"
)

// AuthHandler manages the admin login endpoint.
type AuthHandler struct {
	authenticator *auth.Authenticator
	logger        *zap.Logger
}

func NewAuthHandler(authenticator *auth.Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, logger: logger}
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LoginRequest](r)

	resp, err := h.authenticator.Login(req.Password)
	if err != nil {
		h.logger.Warn("admin login failed", zap.String("remote_addr", r.RemoteAddr))
		writeError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}
