package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sovaehr/authapi/internal/apperror"
	"github.com/sovaehr/authapi/internal/domain"
)

// Key to store the authenticated user in the request context
type userKey struct{}

// Auth verifies provider-issued bearer tokens before guarded handlers run.
// Verification is pure computation over the shared secret; no network I/O.
type Auth struct {
	jwtSecret string
}

// NewAuth creates the guard around the shared JWT verification secret.
func NewAuth(jwtSecret string) *Auth {
	return &Auth{jwtSecret: jwtSecret}
}

// RequireAuth rejects requests without a valid bearer token. On success the
// AuthenticatedUser is placed in the request context for the wrapped handler.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			apperror.WriteError(r.Context(), w, err, GetRequestID(r.Context()))
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) authenticate(r *http.Request) (*domain.AuthenticatedUser, error) {
	tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || tokenString == "" {
		return nil, apperror.MissingToken()
	}

	// Tokens must carry an expiry; the provider's tokens carry no audience
	// this service checks, so no audience validation is configured.
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secretBytes(), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ExpiredToken()
		}
		return nil, apperror.InvalidToken()
	}
	if !token.Valid {
		return nil, apperror.InvalidToken()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.InvalidToken()
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, apperror.InvalidToken()
	}

	return &domain.AuthenticatedUser{UserID: sub, Token: tokenString}, nil
}

// secretBytes interprets the configured secret. The provider's signing
// secret may be delivered base64-encoded or raw depending on deployment, so
// a successful base64 decode wins and anything else is treated as raw bytes.
func (a *Auth) secretBytes() []byte {
	if decoded, err := base64.StdEncoding.DecodeString(a.jwtSecret); err == nil {
		return decoded
	}
	return []byte(a.jwtSecret)
}

// GetUserFromContext retrieves the authenticated user stored by RequireAuth.
func GetUserFromContext(r *http.Request) *domain.AuthenticatedUser {
	user, ok := r.Context().Value(userKey{}).(*domain.AuthenticatedUser)
	if !ok {
		return nil
	}
	return user
}
