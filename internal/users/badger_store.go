// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package users

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/moodtune/internal/metrics"
)

const userKeyPrefix = "user:"

// BadgerStore keeps one key per profile. The database is owned by the
// caller.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a profile store on db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, username string) (Profile, error) {
	var p Profile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("users", "get")
		return Profile{}, &StoreIOError{Op: "get", Err: err}
	}
	p.Username = username
	return p, nil
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, p Profile) error {
	return s.write("put", p, false)
}

// Create implements Store. The existence check and the write share one
// transaction, so concurrent creates of one name conflict.
func (s *BadgerStore) Create(_ context.Context, p Profile) error {
	return s.write("create", p, true)
}

func (s *BadgerStore) write(op string, p Profile, mustBeNew bool) error {
	data, err := json.Marshal(p)
	if err != nil {
		return &StoreIOError{Op: "encode", Err: err}
	}
	key := []byte(userKeyPrefix + p.Username)

	err = s.db.Update(func(txn *badger.Txn) error {
		if mustBeNew {
			_, err := txn.Get(key)
			if err == nil {
				return ErrExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return txn.Set(key, data)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrExists):
		return ErrExists
	case errors.Is(err, badger.ErrConflict):
		return ErrExists
	default:
		metrics.RecordStoreError("users", op)
		return &StoreIOError{Op: op, Err: err}
	}
}

// List implements Store. Keys iterate in byte order, so names come back
// sorted.
func (s *BadgerStore) List(_ context.Context) ([]string, error) {
	names := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		metrics.RecordStoreError("users", "list")
		return nil, &StoreIOError{Op: "list", Err: err}
	}
	return names, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return nil
}
