// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package storage holds persistence primitives shared by the flat-document
// and embedded-database stores.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/moodtune/internal/logging"
)

// WriteFileAtomic replaces path with data. The bytes go to path+".tmp",
// are fsynced, and the temp file is renamed over path, so readers see
// either the old or the new document, never a partial one. Callers must
// serialize writers to the same path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ReadFileIfExists returns the file contents, or nil when it does not exist.
func ReadFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// BadgerOptions tunes OpenBadger.
type BadgerOptions struct {
	// SyncWrites fsyncs every commit. Chat appends must not be lost, so
	// production callers leave this on.
	SyncWrites bool
	// InMemory opens a non-persistent database (tests).
	InMemory bool
}

// OpenBadger opens (or creates) a BadgerDB at path.
func OpenBadger(path string, o BadgerOptions) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithMemTableSize(8 << 20)
	}
	opts.SyncWrites = o.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	logging.Info().
		Str("path", path).
		Bool("in_memory", o.InMemory).
		Bool("sync_writes", o.SyncWrites).
		Msg("Badger store opened")
	return db, nil
}
