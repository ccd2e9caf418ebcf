// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package catalog searches the external music catalog (Spotify Web API).
//
// Every failure returned by a Searcher in this package matches
// ErrUnavailable; callers degrade to FallbackTrack rather than surfacing it.
package catalog

import (
	"context"
	"errors"
	"strings"
)

// EmbedURLPrefix is the playable embed URL prefix for a track ID.
const EmbedURLPrefix = "https://open.spotify.com/embed/track/"

// ErrUnavailable marks any catalog failure: transport, HTTP status,
// decoding, missing credentials or an open circuit breaker.
var ErrUnavailable = errors.New("catalog unavailable")

// Track identifies a playable catalog entry.
type Track struct {
	ID     string `json:"-"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

// Key returns the catalog identifier used for deduplication. It prefers the
// explicit ID and falls back to the identifier embedded in URL.
func (t Track) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return TrackIDFromURL(t.URL)
}

// TrackIDFromURL extracts the trailing track identifier from a catalog URL.
func TrackIDFromURL(url string) string {
	url, _, _ = strings.Cut(url, "?")
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// FallbackTrack is served when the catalog cannot supply enough tracks.
func FallbackTrack() Track {
	return Track{
		ID:     "6rqhFgbbKwnb9MLmUQDhG6",
		Name:   "Fallback Chill Song",
		Artist: "Unknown",
		URL:    EmbedURLPrefix + "6rqhFgbbKwnb9MLmUQDhG6",
	}
}

// Searcher is the single capability the recommendation resolver needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Track, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string, limit int) ([]Track, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	return f(ctx, query, limit)
}
