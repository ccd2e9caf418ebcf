// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

// Request bodies, validated with go-playground/validator tags before any
// handler logic runs. notblank treats whitespace-only strings as missing.

// PredictRequest is the body of POST /predict. Image is a data URI or bare
// base64 payload; absence is reported as ErrMissingImage, not a validation
// error, to keep the response shape the capture page expects.
type PredictRequest struct {
	Image string `json:"image"`
}

// SongsRequest is the optional body of POST /songs.
type SongsRequest struct {
	Mood string `json:"mood" validate:"omitempty,max=64"`
}

// SendMessageRequest is the body of POST /chat/send.
type SendMessageRequest struct {
	To   string `json:"to" validate:"notblank,max=64"`
	Text string `json:"text" validate:"notblank,max=4096"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
	Gender   string `json:"gender" validate:"max=32"`
	Age      string `json:"age" validate:"omitempty,numeric"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// ProfileRequest is the body of PUT /profile.
type ProfileRequest struct {
	Email  string `json:"email" validate:"omitempty,email"`
	Gender string `json:"gender" validate:"max=32"`
	Age    string `json:"age" validate:"omitempty,numeric"`
}
