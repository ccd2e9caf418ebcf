// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/moodtune/internal/auth"
	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/mood"
	"github.com/tomtom215/moodtune/internal/validation"
)

// SongsResponse is the body of POST /songs. Mood is the normalized search
// term the tracks were resolved for.
type SongsResponse struct {
	Mood  string          `json:"mood"`
	Songs []catalog.Track `json:"songs"`
}

// Songs recommends tracks for an explicit mood, or for the caller's last
// classified mood when the body names none. Catalog failures are absorbed
// by the recommender, so this endpoint only fails on a malformed body.
func (h *Handler) Songs(w http.ResponseWriter, r *http.Request) {
	var req SongsRequest
	if err := decodeJSON(w, r, defaultBodyLimit, &req, true); err != nil {
		respondPlainError(w, r, err, nil)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondPlainError(w, r, err, nil)
		return
	}

	label := strings.TrimSpace(req.Mood)
	if label == "" {
		label = h.moods.Get(auth.Identity(r.Context()))
	}

	songs := h.recommender.Resolve(r.Context(), label)
	writeJSON(w, http.StatusOK, SongsResponse{Mood: mood.Normalize(label), Songs: songs})
}
