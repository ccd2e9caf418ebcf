// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/moodtune/internal/auth"
	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/chat"
	"github.com/tomtom215/moodtune/internal/classify"
	"github.com/tomtom215/moodtune/internal/mood"
	"github.com/tomtom215/moodtune/internal/predict"
	"github.com/tomtom215/moodtune/internal/users"
)

// Predictor runs the inference pipeline for one frame.
type Predictor interface {
	Predict(ctx context.Context, identity, payload string) (predict.Result, error)
	Classifier() classify.Classifier
}

// Recommender resolves a mood to a fixed-size track list. It never fails.
type Recommender interface {
	Resolve(ctx context.Context, moodLabel string) []catalog.Track
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_predict.go: mood inference
//   - handlers_songs.go: recommendations
//   - handlers_chat.go: messaging and user listing
//   - handlers_auth.go: registration, login, logout and profile
//   - handlers_health.go: liveness
type Handler struct {
	predictor   Predictor
	recommender Recommender
	messages    chat.Store
	accounts    *users.Service
	moods       *mood.State
	jwtManager  *auth.JWTManager
	sessions    *auth.Middleware
	imageLimit  int64
	startTime   time.Time
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Predictor   Predictor
	Recommender Recommender
	Messages    chat.Store
	Accounts    *users.Service
	Moods       *mood.State
	JWTManager  *auth.JWTManager
	Sessions    *auth.Middleware
	// MaxImageBytes bounds the decoded image; the request body may be up
	// to 4/3 of that plus the data URI header.
	MaxImageBytes int
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) (*Handler, error) {
	switch {
	case d.Predictor == nil:
		return nil, errors.New("api: predictor is required")
	case d.Recommender == nil:
		return nil, errors.New("api: recommender is required")
	case d.Messages == nil:
		return nil, errors.New("api: message store is required")
	case d.Accounts == nil:
		return nil, errors.New("api: account service is required")
	case d.Moods == nil:
		return nil, errors.New("api: mood state is required")
	case d.JWTManager == nil || d.Sessions == nil:
		return nil, errors.New("api: session management is required")
	}

	limit := int64(defaultBodyLimit)
	if d.MaxImageBytes > 0 {
		limit = int64(d.MaxImageBytes)*4/3 + 4096
	}

	return &Handler{
		predictor:   d.Predictor,
		recommender: d.Recommender,
		messages:    d.Messages,
		accounts:    d.Accounts,
		moods:       d.Moods,
		jwtManager:  d.JWTManager,
		sessions:    d.Sessions,
		imageLimit:  limit,
		startTime:   time.Now(),
	}, nil
}
