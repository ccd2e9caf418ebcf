// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package recommend resolves a mood into a fixed-size list of catalog tracks.
//
// # Resolution
//
// A mood is normalized to a search term (see package mood), and the term is
// the cache key. On a miss the catalog is searched once per key, even under
// concurrent load, and the deduplicated result is padded with the fallback
// track until it is at least Options.ResultSize long. That pre-sample list is
// cached for Options.TTL. Each call then returns a uniform sample of
// ResultSize distinct entries from it.
//
// Catalog failures never reach the caller: they yield ResultSize copies of
// the fallback track and leave the cache untouched so the next call retries.
//
// # Thread Safety
//
// Resolver is safe for concurrent use.
package recommend
