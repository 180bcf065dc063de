package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type contextKey string

// callerKey is the context key for the authenticated caller's user ID.
const callerKey = contextKey("caller")

// TokenService signs and verifies identity claims. The signing key comes
// from configuration at process start; there is no package-level secret.
type TokenService struct {
	key []byte
}

// NewTokenService creates a TokenService around the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{key: []byte(secret)}
}

// Issue creates a signed claim for the given user ID, valid for 24 hours.
func (t *TokenService) Issue(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Verify parses and validates a claim string and returns the embedded user
// ID. Malformed, expired and badly signed tokens all fail the same way.
func (t *TokenService) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.UserID, nil
}

// Middleware creates a middleware for protecting routes. The claim travels
// in the Authorization header, either bare or with a Bearer prefix. Missing
// and invalid tokens both answer 401; 403 is reserved for ownership checks
// inside the handlers.
func (t *TokenService) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := strings.TrimSpace(r.Header.Get("Authorization"))
			tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			userID, err := t.Verify(tokenStr)
			if err != nil {
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID returns the authenticated user ID stored by Middleware.
func CallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey).(string)
	return id, ok
}
