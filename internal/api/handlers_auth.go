// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/moodtune/internal/auth"
	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/users"
)

// LoginResponse is returned by a successful login. The same token is also
// set as the session cookie.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.accounts.Register(r.Context(), users.Registration{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Gender:   req.Gender,
		Age:      req.Age,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(p.View())
}

// Login verifies credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(p.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.sessions.SetSessionCookie(w, token)

	logging.Ctx(r.Context()).Info().Str("username", sanitizeLogValue(p.Username)).Msg("User logged in")
	NewResponseWriter(w, r).Success(LoginResponse{
		Token:     token,
		Username:  p.Username,
		ExpiresAt: time.Now().Add(h.jwtManager.Timeout()).UTC(),
	})
}

// Logout clears the session cookie. Tokens are stateless, so a copied
// bearer token stays valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	NewResponseWriter(w, r).Success(map[string]string{"status": "logged_out"})
}

// GetProfile returns the caller's profile without the password hash.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.accounts.Profile(r.Context(), auth.Identity(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(p.View())
}

// UpdateProfile replaces the caller's email, gender and age.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.accounts.UpdateProfile(r.Context(), auth.Identity(r.Context()), users.ProfileUpdate{
		Email:  req.Email,
		Gender: req.Gender,
		Age:    req.Age,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(p.View())
}
