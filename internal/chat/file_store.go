// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package chat

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/metrics"
	"github.com/tomtom215/moodtune/internal/storage"
)

// FileStore keeps every message in one JSON array document. Each append
// rewrites the whole document, so appends are serialized by one mutex.
type FileStore struct {
	path string
	now  Clock
	mu   sync.RWMutex
}

// NewFileStore returns a store backed by the JSON document at path. The
// file is created on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// WithClock replaces the timestamp source.
func (s *FileStore) WithClock(now Clock) *FileStore {
	s.now = now
	return s
}

// Path returns the backing document path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() ([]Message, error) {
	data, err := storage.ReadFileIfExists(s.path)
	if err != nil {
		return nil, &StoreIOError{Op: "read", Path: s.path, Err: err}
	}
	if len(data) == 0 {
		return nil, nil
	}
	var log []Message
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, &StoreIOError{Op: "decode", Path: s.path, Err: err}
	}
	return log, nil
}

// Append implements Store.
func (s *FileStore) Append(ctx context.Context, from, to, text string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load()
	if err != nil {
		metrics.RecordStoreError("chat", "append")
		return Message{}, err
	}

	msg := Message{From: from, To: to, Text: text, TS: s.now().Unix()}
	log = append(log, msg)

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		metrics.RecordStoreError("chat", "append")
		return Message{}, &StoreIOError{Op: "encode", Path: s.path, Err: err}
	}
	if err := storage.WriteFileAtomic(s.path, data, 0o600); err != nil {
		metrics.RecordStoreError("chat", "append")
		return Message{}, &StoreIOError{Op: "write", Path: s.path, Err: err}
	}

	metrics.ChatMessagesAppended.Inc()
	logging.Ctx(ctx).Debug().Str("from", from).Str("to", to).Int64("ts", msg.TS).Msg("chat message appended")
	return msg, nil
}

// Query implements Store.
func (s *FileStore) Query(_ context.Context, a, b string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, err := s.load()
	if err != nil {
		metrics.RecordStoreError("chat", "query")
		return nil, err
	}
	return conversation(log, a, b, 0, false), nil
}

// QueryIncremental implements Store.
func (s *FileStore) QueryIncremental(_ context.Context, a, b string, since int64) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, err := s.load()
	if err != nil {
		metrics.RecordStoreError("chat", "query")
		return nil, err
	}
	return conversation(log, a, b, since, true), nil
}

// Close implements Store. The file store holds no open handles.
func (s *FileStore) Close() error {
	return nil
}
