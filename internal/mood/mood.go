// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package mood maps emotion labels to catalog search terms and holds the
// last classified mood per user.
package mood

import "strings"

// DefaultTerm is used for unknown, empty and sentinel moods.
const DefaultTerm = "chill"

// Sentinel values that carry no mood.
const (
	None           = "none"
	NoFaceDetected = "No face detected"
)

var searchTerms = map[string]string{
	"neutral":  "chill",
	"angry":    "rock",
	"surprise": "party",
	"happy":    "upbeat",
	"sad":      "melancholy",
	"fear":     "intense",
	"disgust":  "grunge",
}

// Normalize returns the catalog search term for a label or free-text mood.
// Matching is case-insensitive and ignores surrounding whitespace. Every
// input maps to a term.
func Normalize(label string) string {
	if term, ok := searchTerms[strings.ToLower(strings.TrimSpace(label))]; ok {
		return term
	}
	return DefaultTerm
}

// IsEmpty reports whether s is blank or one of the no-mood sentinels.
func IsEmpty(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", None, strings.ToLower(NoFaceDetected):
		return true
	}
	return false
}

// Query composes the catalog query for a search term, e.g. "upbeat bollywood".
func Query(term, genre string) string {
	if genre == "" {
		return term
	}
	return term + " " + genre
}
