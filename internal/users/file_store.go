// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package users

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/tomtom215/moodtune/internal/metrics"
	"github.com/tomtom215/moodtune/internal/storage"
)

// FileStore keeps all profiles in one JSON object keyed by username.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore returns a store backed by the document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]Profile, error) {
	data, err := storage.ReadFileIfExists(s.path)
	if err != nil {
		return nil, &StoreIOError{Op: "read", Path: s.path, Err: err}
	}
	all := make(map[string]Profile)
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, &StoreIOError{Op: "decode", Path: s.path, Err: err}
	}
	for name, p := range all {
		p.Username = name
		all[name] = p
	}
	return all, nil
}

func (s *FileStore) save(all map[string]Profile) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return &StoreIOError{Op: "encode", Path: s.path, Err: err}
	}
	if err := storage.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return &StoreIOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, username string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.load()
	if err != nil {
		metrics.RecordStoreError("users", "get")
		return Profile{}, err
	}
	p, ok := all[username]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, p Profile) error {
	return s.mutate("put", func(all map[string]Profile) error {
		all[p.Username] = p
		return nil
	})
}

// Create implements Store.
func (s *FileStore) Create(_ context.Context, p Profile) error {
	return s.mutate("create", func(all map[string]Profile) error {
		if _, taken := all[p.Username]; taken {
			return ErrExists
		}
		all[p.Username] = p
		return nil
	})
}

func (s *FileStore) mutate(op string, fn func(map[string]Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		metrics.RecordStoreError("users", op)
		return err
	}
	if err := fn(all); err != nil {
		return err
	}
	if err := s.save(all); err != nil {
		metrics.RecordStoreError("users", op)
		return err
	}
	return nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.load()
	if err != nil {
		metrics.RecordStoreError("users", "list")
		return nil, err
	}
	names := lo.Keys(all)
	sort.Strings(names)
	return names, nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}
