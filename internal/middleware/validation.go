package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"talentscout/interview/internal/models"
	"talentscout/interview/internal/utils"
)

type contextKey string

const validatedRequestKey contextKey = "validated_request"

const maxBodyBytes = 1 << 20

// Validator is implemented by request models. Validate may normalize the
// receiver and returns a *models.ErrorResponse for field-level problems.
type Validator interface {
	Validate() error
}

// newRequest allocates the value T points to, or a fresh T for value types.
func newRequest[T Validator]() T {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface().(T)
	}
	return reflect.New(t).Interface().(T)
}

// ValidateRequest decodes the JSON body into T, runs Validate and stores the
// result in the request context for GetValidatedRequest.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := newRequest[T]()

			err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req)
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				utils.JSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{
					Code:    "body_too_large",
					Message: "request body must not exceed 1 MiB",
				})
				return
			case errors.Is(err, io.EOF):
				utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
					Code:    "empty_body",
					Message: "request body is required",
				})
				return
			case err != nil:
				utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
					Code:    "invalid_json",
					Message: "Invalid JSON in request body",
				})
				return
			}

			if err := req.Validate(); err != nil {
				var errResp *models.ErrorResponse
				if !errors.As(err, &errResp) {
					errResp = &models.ErrorResponse{Code: "validation_error", Message: err.Error()}
				}
				utils.JSON(w, http.StatusBadRequest, *errResp)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), validatedRequestKey, req)))
		})
	}
}

// GetValidatedRequest returns the request stored by ValidateRequest. It panics
// when the route was registered without that middleware.
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedRequestKey).(T)
}
