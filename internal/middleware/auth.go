package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"talentscout/interview/internal/models"
	"talentscout/interview/internal/utils"
)

// TokenVerifier checks the bearer token of a request.
type TokenVerifier interface {
	VerifyRequest(r *http.Request) (jwt.MapClaims, error)
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := verifier.VerifyRequest(r); err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="talentscout"`)
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: err.Error(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
