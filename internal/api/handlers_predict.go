// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/moodtune/internal/auth"
)

// noneEmotion is reported alongside every prediction error.
const noneEmotion = "None"

// PredictResponse is the body of a successful POST /predict, including the
// no-face outcome.
type PredictResponse struct {
	Emotion string `json:"emotion"`
}

// Predict classifies the dominant face in an uploaded frame and records the
// caller's last known mood.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	extra := map[string]interface{}{"emotion": noneEmotion}

	var req PredictRequest
	if err := decodeJSON(w, r, h.imageLimit, &req, true); err != nil {
		respondPlainError(w, r, err, extra)
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		respondPlainError(w, r, ErrMissingImage, extra)
		return
	}

	res, err := h.predictor.Predict(r.Context(), auth.Identity(r.Context()), req.Image)
	if err != nil {
		respondPlainError(w, r, err, extra)
		return
	}
	writeJSON(w, http.StatusOK, PredictResponse{Emotion: res.Emotion})
}
