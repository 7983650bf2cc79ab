package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"talentscout/interview/internal/models"
)

const (
	AdminSubject    = "admin"
	TokenType       = "bearer"
	DefaultTokenTTL = 24 * time.Hour
)

var (
	ErrMissingAuthHeader  = errors.New("missing or malformed Authorization header")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authenticator guards the admin surface with a single password and
// HS256 bearer tokens.
type Authenticator struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthenticator hashes password once at startup. An empty password
// disables login; tokens can still be verified.
func NewAuthenticator(password, secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", models.ErrValidation)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	a := &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		a.passwordHash = hash
	}
	return a, nil
}

func (a *Authenticator) LoginEnabled() bool {
	return len(a.passwordHash) > 0
}

// Login exchanges the admin password for an access token.
func (a *Authenticator) Login(password string) (*models.LoginResponse, error) {
	if !a.LoginEnabled() {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := a.IssueToken()
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{AccessToken: token, TokenType: TokenType}, nil
}

func (a *Authenticator) IssueToken() (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": AdminSubject,
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a raw token and returns its claims.
func (a *Authenticator) Verify(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	if sub, _ := claims["sub"].(string); sub != AdminSubject {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// VerifyRequest reads the bearer token from the Authorization header.
func (a *Authenticator) VerifyRequest(r *http.Request) (jwt.MapClaims, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, ErrMissingAuthHeader
	}
	return a.Verify(strings.TrimPrefix(authz, "Bearer "))
}
