package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"talentscout/interview/internal/auth"
	"talentscout/interview/internal/models"
	"talentscout/interview/internal/utils"
)

type errorKind struct {
	target error
	status int
	code   string
}

var errorKinds = []errorKind{
	{models.ErrValidation, http.StatusBadRequest, "validation_error"},
	{models.ErrNotFound, http.StatusNotFound, "not_found"},
	{models.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{models.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{models.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
	{models.ErrCollaboratorTimeout, http.StatusGatewayTimeout, "collaborator_timeout"},
	{models.ErrCollaborator, http.StatusBadGateway, "collaborator_error"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
}

// statusFor maps an error kind to its HTTP status and response code.
func statusFor(err error) (int, string) {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			return kind.status, kind.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// errorBody logs err and returns the status and body sent to the client.
// Internal errors are logged at error level and their message is hidden.
func errorBody(logger *zap.Logger, err error, fields ...zap.Field) (int, models.ErrorResponse) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", append(fields, zap.Error(err))...)
		message = "Internal server error"
	} else {
		logger.Debug("request rejected", append(fields, zap.String("code", code), zap.Error(err))...)
	}
	return status, models.ErrorResponse{Code: code, Message: message}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error, fields ...zap.Field) {
	status, body := errorBody(logger, err, fields...)
	utils.JSON(w, status, body)
}
