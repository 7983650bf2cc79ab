package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscout/interview/internal/models"
)

const secret = "test-secret"

func newAuthenticator(t *testing.T, password string) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(password, secret, time.Hour)
	require.NoError(t, err)
	return a
}

func TestNewAuthenticatorRequiresSecret(t *testing.T) {
	_, err := NewAuthenticator("pw", "", time.Hour)
	assert.ErrorIs(t, err, models.ErrValidation)

	a, err := NewAuthenticator("pw", secret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, a.ttl)
}

func TestLogin(t *testing.T) {
	a := newAuthenticator(t, "s3cret")

	resp, err := a.Login("s3cret")
	require.NoError(t, err)
	assert.Equal(t, TokenType, resp.TokenType)

	claims, err := a.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims["sub"])

	_, err = a.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	a := newAuthenticator(t, "")
	assert.False(t, a.LoginEnabled())

	_, err := a.Login("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRequest(t *testing.T) {
	a := newAuthenticator(t, "s3cret")

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		_, err := a.VerifyRequest(req)
		assert.ErrorIs(t, err, ErrMissingAuthHeader)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		_, err := a.VerifyRequest(req)
		assert.ErrorIs(t, err, ErrMissingAuthHeader)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := a.IssueToken()
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		_, err = a.VerifyRequest(req)
		assert.NoError(t, err)
	})
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	a := newAuthenticator(t, "s3cret")

	t.Run("invalid signing method", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": AdminSubject,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(key)
		require.NoError(t, err)
		_, err = a.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("invalid signature", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": AdminSubject,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other-secret"))
		require.NoError(t, err)
		_, err = a.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": AdminSubject,
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = a.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong subject", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "candidate",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = a.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := a.IssueToken()
		require.NoError(t, err)
		a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { a.now = time.Now }()
		_, err = a.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
