// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moodtune/internal/chat"
	"github.com/tomtom215/moodtune/internal/classify"
	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/users"
	"github.com/tomtom215/moodtune/internal/validation"
	"github.com/tomtom215/moodtune/internal/vision"
)

var (
	// ErrMissingImage is returned when a prediction request has no image.
	ErrMissingImage = errors.New("no image")

	// ErrMissingUser is returned when a chat query names no peer.
	ErrMissingUser = errors.New("missing user")

	// ErrInvalidSince is returned for a non-integer chat cursor.
	ErrInvalidSince = errors.New("since must be an integer")

	// ErrInvalidBody is returned when a request body is not valid JSON.
	ErrInvalidBody = errors.New("invalid JSON request body")
)

// failure is the HTTP rendering of an error.
type failure struct {
	status  int
	code    string
	message string
	details interface{}
	level   zerolog.Level
}

// classifyError maps domain errors to status codes. Every handler goes
// through here so the taxonomy lives in one place.
func classifyError(err error) failure {
	var (
		missing    *validation.MissingFieldError
		invalid    *validation.RequestValidationError
		tooLarge   *http.MaxBytesError
		chatIO     *chat.StoreIOError
		usersIO    *users.StoreIOError
		classifyFa *classify.ClassificationError
	)

	switch {
	case errors.As(err, &missing):
		return failure{http.StatusBadRequest, ErrCodeMissingField, missing.Error(), missing.Fields, zerolog.DebugLevel}
	case errors.As(err, &invalid):
		return failure{http.StatusBadRequest, ErrCodeValidationFailed, invalid.Error(), invalid.Details(), zerolog.DebugLevel}
	case errors.Is(err, users.ErrMissingCredentials):
		return failure{http.StatusBadRequest, ErrCodeMissingField, err.Error(), nil, zerolog.DebugLevel}
	case errors.Is(err, ErrMissingImage):
		return failure{http.StatusBadRequest, ErrCodeMissingField, "No image", nil, zerolog.DebugLevel}
	case errors.Is(err, ErrMissingUser):
		return failure{http.StatusBadRequest, ErrCodeMissingField, "Missing user", nil, zerolog.DebugLevel}
	case errors.Is(err, ErrInvalidSince), errors.Is(err, ErrInvalidBody):
		return failure{http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil, zerolog.DebugLevel}
	case errors.As(err, &tooLarge):
		return failure{http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "request body too large", nil, zerolog.WarnLevel}
	case errors.Is(err, vision.ErrDecode):
		return failure{http.StatusBadRequest, ErrCodeDecodeFailed, "Failed to decode image", nil, zerolog.WarnLevel}
	case errors.As(err, &classifyFa), errors.Is(err, classify.ErrClassification):
		return failure{http.StatusInternalServerError, ErrCodeClassification, "Invalid model output", nil, zerolog.ErrorLevel}
	case errors.Is(err, users.ErrExists):
		return failure{http.StatusConflict, ErrCodeConflict, "Username already exists", nil, zerolog.DebugLevel}
	case errors.Is(err, users.ErrInvalidCredentials):
		return failure{http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid credentials", nil, zerolog.InfoLevel}
	case errors.Is(err, users.ErrNotFound):
		return failure{http.StatusNotFound, ErrCodeNotFound, "User not found", nil, zerolog.DebugLevel}
	case errors.As(err, &chatIO), errors.As(err, &usersIO):
		return failure{http.StatusInternalServerError, ErrCodeStorageError, "A storage error occurred", nil, zerolog.ErrorLevel}
	default:
		return failure{http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", nil, zerolog.ErrorLevel}
	}
}

func logFailure(r *http.Request, err error, f failure) {
	logging.Ctx(r.Context()).WithLevel(f.level).
		Err(err).
		Int("status", f.status).
		Str("code", f.code).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Msg("Request failed")
}

// respondError renders err inside the APIResponse envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	f := classifyError(err)
	logFailure(r, err, f)
	NewResponseWriter(w, r).ErrorWithDetails(f.status, f.code, f.message, f.details)
}

// respondPlainError renders err as {"error": message} merged with extra,
// the shape polling clients of the prediction and chat endpoints expect.
func respondPlainError(w http.ResponseWriter, r *http.Request, err error, extra map[string]interface{}) {
	f := classifyError(err)
	logFailure(r, err, f)

	body := make(map[string]interface{}, len(extra)+1)
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = f.message
	writeJSON(w, f.status, body)
}
