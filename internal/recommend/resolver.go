// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/moodtune/internal/cache"
	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/metrics"
	"github.com/tomtom215/moodtune/internal/mood"
)

// Resolver turns moods into track recommendations. It is safe for
// concurrent use.
type Resolver struct {
	opts   Options
	search catalog.Searcher
	cache  *cache.TTL[[]catalog.Track]
	group  singleflight.Group
	logger zerolog.Logger

	// math/rand.Rand is not safe for concurrent use
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewResolver creates a Resolver backed by search.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResolver(search catalog.Searcher, opts Options, logger zerolog.Logger) (*Resolver, error) {
	if search == nil {
		return nil, fmt.Errorf("recommend: nil searcher")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend options: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Resolver{
		opts:   opts,
		search: search,
		cache:  cache.NewWithClock[[]catalog.Track](opts.TTL, opts.Clock),
		logger: logger.With().Str("component", "recommend").Logger(),
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // sampling does not need crypto randomness
	}, nil
}

// Resolve returns exactly Options.ResultSize tracks for mood. It never
// fails; catalog problems degrade to fallback tracks.
func (r *Resolver) Resolve(ctx context.Context, moodLabel string) []catalog.Track {
	term := mood.Normalize(moodLabel)

	if tracks, ok := r.cache.Get(term); ok {
		metrics.RecommendCacheHits.Inc()
		r.logger.Debug().Str("term", term).Int("cached", len(tracks)).Msg("recommendation cache hit")
		return r.sample(tracks)
	}
	metrics.RecommendCacheMisses.Inc()

	v, err, shared := r.group.Do(term, func() (interface{}, error) {
		return r.refresh(ctx, term)
	})
	if err != nil {
		metrics.RecommendFallbacks.Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("term", term).
			Bool("shared", shared).
			Msg("CatalogUnavailable: serving fallback tracks")
		return r.fallback()
	}
	return r.sample(v.([]catalog.Track))
}

// refresh runs under the singleflight key. It re-checks the cache because a
// previous flight for the same key may have completed between the caller's
// miss and acquiring the flight.
func (r *Resolver) refresh(ctx context.Context, term string) ([]catalog.Track, error) {
	if tracks, ok := r.cache.Get(term); ok {
		return tracks, nil
	}

	// Detach from the first caller's cancellation: the result is shared by
	// every waiter on this key. The timeout still bounds the call.
	searchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()

	query := mood.Query(term, r.opts.Genre)
	found, err := r.search.Search(searchCtx, query, r.opts.SearchLimit)
	if err != nil {
		return nil, err
	}

	tracks := r.pad(lo.UniqBy(found, catalog.Track.Key))
	r.cache.Set(term, tracks)
	metrics.RecommendCacheEntries.Set(float64(r.cache.Len()))

	r.logger.Info().
		Str("term", term).
		Str("query", query).
		Int("found", len(found)).
		Int("cached", len(tracks)).
		Msg("refreshed recommendation cache")
	return tracks, nil
}

// pad appends fallback tracks while the list is shorter than ResultSize.
func (r *Resolver) pad(tracks []catalog.Track) []catalog.Track {
	for len(tracks) < r.opts.ResultSize {
		tracks = append(tracks, catalog.FallbackTrack())
	}
	return tracks
}

func (r *Resolver) fallback() []catalog.Track {
	return r.pad(make([]catalog.Track, 0, r.opts.ResultSize))
}

// sample returns ResultSize distinct entries chosen uniformly, or a copy of
// tracks when it is not longer than that. The cached slice is never handed
// out directly.
func (r *Resolver) sample(tracks []catalog.Track) []catalog.Track {
	n := r.opts.ResultSize
	if len(tracks) <= n {
		return append([]catalog.Track(nil), tracks...)
	}

	r.rngMu.Lock()
	idx := r.rng.Perm(len(tracks))[:n]
	r.rngMu.Unlock()

	out := make([]catalog.Track, n)
	for i, j := range idx {
		out[i] = tracks[j]
	}
	return out
}

// Cached returns the cached pre-sample list for a mood, if any.
func (r *Resolver) Cached(moodLabel string) ([]catalog.Track, bool) {
	tracks, ok := r.cache.Get(mood.Normalize(moodLabel))
	if !ok {
		return nil, false
	}
	return append([]catalog.Track(nil), tracks...), true
}

// PurgeExpired drops expired cache entries and returns how many were removed.
func (r *Resolver) PurgeExpired() int {
	removed := r.cache.Purge()
	metrics.RecommendCacheEntries.Set(float64(r.cache.Len()))
	return removed
}

// CacheStats exposes cache counters for health reporting.
func (r *Resolver) CacheStats() cache.Stats {
	return r.cache.Stats()
}
