// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/moodtune/internal/auth"
	"github.com/tomtom215/moodtune/internal/chat"
)

// SendMessageResponse acknowledges a stored message.
type SendMessageResponse struct {
	Status  string       `json:"status"`
	Message chat.Message `json:"message"`
}

// SendMessage appends a message from the caller.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondPlainError(w, r, err, nil)
		return
	}

	msg, err := h.messages.Append(r.Context(), auth.Identity(r.Context()), strings.TrimSpace(req.To), req.Text)
	if err != nil {
		respondPlainError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, SendMessageResponse{Status: "ok", Message: msg})
}

// FetchMessages returns the full conversation between the caller and ?user=.
func (h *Handler) FetchMessages(w http.ResponseWriter, r *http.Request) {
	peer := strings.TrimSpace(r.URL.Query().Get("user"))
	if peer == "" {
		respondPlainError(w, r, ErrMissingUser, nil)
		return
	}

	msgs, err := h.messages.Query(r.Context(), auth.Identity(r.Context()), peer)
	if err != nil {
		respondPlainError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// MessageUpdates returns messages in the conversation newer than ?since=.
func (h *Handler) MessageUpdates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	peer := strings.TrimSpace(q.Get("user"))
	if peer == "" {
		respondPlainError(w, r, ErrMissingUser, nil)
		return
	}
	since, err := parseSince(q.Get("since"))
	if err != nil {
		respondPlainError(w, r, err, nil)
		return
	}

	msgs, err := h.messages.QueryIncremental(r.Context(), auth.Identity(r.Context()), peer, since)
	if err != nil {
		respondPlainError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// ListUsers returns every other registered username, sorted.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	names, err := h.accounts.Others(r.Context(), auth.Identity(r.Context()))
	if err != nil {
		respondPlainError(w, r, err, nil)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}
