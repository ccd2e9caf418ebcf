// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package chat is the append-only message log between pairs of users.
//
// Messages carry a wall-clock timestamp in unix seconds and are never
// mutated or deleted. A conversation is every message whose {from, to} is
// either ordering of the pair; queries return it ascending by timestamp,
// with equal timestamps kept in insertion order.
package chat

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Message is one stored chat line.
type Message struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// Between reports whether m belongs to the conversation of a and b.
func (m Message) Between(a, b string) bool {
	return (m.From == a && m.To == b) || (m.From == b && m.To == a)
}

// Store is the message repository. Implementations are safe for concurrent
// use.
type Store interface {
	// Append stamps and durably stores a message. A returned error means the
	// message was not stored.
	Append(ctx context.Context, from, to, text string) (Message, error)
	// Query returns the full conversation of a and b.
	Query(ctx context.Context, a, b string) ([]Message, error)
	// QueryIncremental returns the conversation entries with TS > since.
	QueryIncremental(ctx context.Context, a, b string, since int64) ([]Message, error)
	Close() error
}

// StoreIOError is a persistence failure. Appends that return it did not
// store the message.
type StoreIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreIOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("chat store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("chat store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// Clock supplies append timestamps.
type Clock func() time.Time

// conversation filters log down to the pair, keeps TS > since, and sorts
// ascending. The sort is stable so equal timestamps stay in log order.
func conversation(log []Message, a, b string, since int64, incremental bool) []Message {
	out := make([]Message, 0)
	for _, m := range log {
		if !m.Between(a, b) {
			continue
		}
		if incremental && m.TS <= since {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(x, y Message) int {
		switch {
		case x.TS < y.TS:
			return -1
		case x.TS > y.TS:
			return 1
		}
		return 0
	})
	return out
}
