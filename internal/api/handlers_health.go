// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the liveness report.
type HealthStatus struct {
	Status            string  `json:"status"`
	ClassifierBackend string  `json:"classifier_backend"`
	Labels            int     `json:"labels"`
	Uptime            float64 `json:"uptime_seconds"`
}

// Health reports liveness and the loaded classifier.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	c := h.predictor.Classifier()
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:            "healthy",
		ClassifierBackend: c.Backend(),
		Labels:            len(c.Labels()),
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}
