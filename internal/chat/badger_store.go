// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package chat

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/metrics"
)

// Key layout: msg:<20-digit ts>:<20-digit seq>. Badger iterates keys in byte
// order, so a prefix scan yields timestamp order with ties in append order.
const (
	messageKeyPrefix = "msg:"
	sequenceKey      = "seq:msg"
)

// BadgerStore keeps messages as individual keys in a BadgerDB. The
// database may be shared with other stores; its owner closes it.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	now Clock
}

// NewBadgerStore creates a message store on db.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		return nil, &StoreIOError{Op: "open sequence", Err: err}
	}
	return &BadgerStore{db: db, seq: seq, now: time.Now}, nil
}

// WithClock replaces the timestamp source.
func (s *BadgerStore) WithClock(now Clock) *BadgerStore {
	s.now = now
	return s
}

func messageKey(ts int64, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", messageKeyPrefix, ts, seq))
}

// Append implements Store.
func (s *BadgerStore) Append(ctx context.Context, from, to, text string) (Message, error) {
	n, err := s.seq.Next()
	if err != nil {
		metrics.RecordStoreError("chat", "append")
		return Message{}, &StoreIOError{Op: "next sequence", Err: err}
	}

	msg := Message{From: from, To: to, Text: text, TS: s.now().Unix()}
	data, err := json.Marshal(msg)
	if err != nil {
		metrics.RecordStoreError("chat", "append")
		return Message{}, &StoreIOError{Op: "encode", Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg.TS, n), data)
	})
	if err != nil {
		metrics.RecordStoreError("chat", "append")
		return Message{}, &StoreIOError{Op: "write", Err: err}
	}

	metrics.ChatMessagesAppended.Inc()
	logging.Ctx(ctx).Debug().Str("from", from).Str("to", to).Int64("ts", msg.TS).Msg("chat message appended")
	return msg, nil
}

// Query implements Store.
func (s *BadgerStore) Query(_ context.Context, a, b string) ([]Message, error) {
	return s.scan(a, b, []byte(messageKeyPrefix))
}

// QueryIncremental implements Store. The scan starts at the first key with
// a timestamp after since.
func (s *BadgerStore) QueryIncremental(_ context.Context, a, b string, since int64) ([]Message, error) {
	switch {
	case since < 0:
		return s.scan(a, b, []byte(messageKeyPrefix))
	case since == math.MaxInt64:
		// No timestamp can follow; since+1 would wrap to a key before the log.
		return make([]Message, 0), nil
	}
	return s.scan(a, b, messageKey(since+1, 0))
}

func (s *BadgerStore) scan(a, b string, start []byte) ([]Message, error) {
	out := make([]Message, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messageKeyPrefix)
		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			var m Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			if m.Between(a, b) {
				out = append(out, m)
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordStoreError("chat", "query")
		return nil, &StoreIOError{Op: "scan", Err: err}
	}
	return out, nil
}

// Close releases the sequence lease. The database is closed by its owner.
func (s *BadgerStore) Close() error {
	if err := s.seq.Release(); err != nil {
		return &StoreIOError{Op: "release sequence", Err: err}
	}
	return nil
}
