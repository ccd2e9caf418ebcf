// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/moodtune/internal/logging"
)

type contextKey string

// ClaimsContextKey holds *Claims for authenticated requests.
const ClaimsContextKey contextKey = "claims"

// TokenCookieName is the session cookie.
const TokenCookieName = "token"

var (
	errMissingToken = errors.New("unauthorized: missing token")
	errBadHeader    = errors.New("unauthorized: invalid authorization header")
	errBadToken     = errors.New("unauthorized: invalid token")
)

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware enforces authentication on wrapped handlers.
type Middleware struct {
	jwtManager   *JWTManager
	cookieSecure bool
	writeError   ErrorWriter
}

// NewMiddleware creates the authentication middleware. writeError may be
// nil, in which case failures are plain-text 401s.
func NewMiddleware(jwtManager *JWTManager, cookieSecure bool, writeError ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{jwtManager: jwtManager, cookieSecure: cookieSecure, writeError: writeError}
}

// Authenticate rejects requests without a valid session token and stores
// the claims in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			m.writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			m.writeError(w, r, http.StatusUnauthorized, errBadToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		ctx = logging.ContextWithUser(ctx, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken prefers the Authorization header and falls back to the
// session cookie.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil || cookie.Value == "" {
			return "", errMissingToken
		}
		return cookie.Value, nil
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errBadHeader
	}
	return strings.TrimSpace(token), nil
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// Identity returns the authenticated username, or "" outside Authenticate.
func Identity(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Username
	}
	return ""
}

// SetSessionCookie stores token as an HttpOnly session cookie.
func (m *Middleware) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.jwtManager.Timeout() / time.Second),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (m *Middleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
