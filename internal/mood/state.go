// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package mood

import (
	"sync"
	"time"
)

// Entry is the last classification outcome recorded for a user.
type Entry struct {
	Mood      string    `json:"mood"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State holds the last known mood per identity. The empty identity is a
// valid key and acts as a shared slot for unauthenticated callers.
// It is advisory state: last writer wins, nothing is persisted.
type State struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewState returns an empty State.
func NewState() *State {
	return &State{entries: make(map[string]Entry), now: time.Now}
}

// Set records mood for identity.
func (s *State) Set(identity, mood string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity] = Entry{Mood: mood, UpdatedAt: s.now()}
}

// Clear resets identity to None, e.g. after a frame with no face.
func (s *State) Clear(identity string) {
	s.Set(identity, None)
}

// Get returns the last mood for identity, or None if nothing was recorded.
func (s *State) Get(identity string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[identity]; ok {
		return e.Mood
	}
	return None
}

// Lookup returns the full entry for identity.
func (s *State) Lookup(identity string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[identity]
	return e, ok
}
