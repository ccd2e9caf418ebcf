// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/logging"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   atomic.Int32
	tracks  []catalog.Track
	err     error
	queries []string
	limits  []int
	gate    chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]catalog.Track, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]catalog.Track(nil), f.tracks...), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func makeTracks(n int) []catalog.Track {
	out := make([]catalog.Track, n)
	for i := range out {
		id := fmt.Sprintf("track%02d", i)
		out[i] = catalog.Track{ID: id, Name: "Song " + id, Artist: "Artist", URL: catalog.EmbedURLPrefix + id}
	}
	return out
}

func newTestResolver(t *testing.T, s catalog.Searcher, clock *fakeClock) *Resolver {
	t.Helper()
	opts := DefaultOptions()
	opts.Seed = 7
	if clock != nil {
		opts.Clock = clock.Now
	}
	r, err := NewResolver(s, opts, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func countFallbacks(tracks []catalog.Track) int {
	n := 0
	for _, tr := range tracks {
		if tr == catalog.FallbackTrack() {
			n++
		}
	}
	return n
}

func TestResolveAlwaysReturnsFive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		found         int
		err           error
		wantFallbacks int
		wantCached    int
	}{
		{name: "empty catalog", found: 0, wantFallbacks: 5, wantCached: 5},
		{name: "three results", found: 3, wantFallbacks: 2, wantCached: 5},
		{name: "five results", found: 5, wantFallbacks: 0, wantCached: 5},
		{name: "fifty results", found: 50, wantFallbacks: 0, wantCached: 50},
		{name: "catalog error", err: catalog.ErrUnavailable, wantFallbacks: 5, wantCached: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &fakeSearcher{tracks: makeTracks(tt.found), err: tt.err}
			r := newTestResolver(t, s, nil)

			got := r.Resolve(context.Background(), "happy")
			if len(got) != 5 {
				t.Fatalf("Resolve returned %d tracks, want 5", len(got))
			}
			if fb := countFallbacks(got); fb != tt.wantFallbacks {
				t.Errorf("fallback count = %d, want %d", fb, tt.wantFallbacks)
			}

			cached, ok := r.Cached("happy")
			if tt.wantCached < 0 {
				if ok {
					t.Errorf("failure must not populate the cache, got %d entries", len(cached))
				}
				return
			}
			if !ok || len(cached) != tt.wantCached {
				t.Errorf("cached list len = %d (ok=%v), want %d", len(cached), ok, tt.wantCached)
			}
		})
	}
}

func TestResolveSamplesDistinctEntries(t *testing.T) {
	t.Parallel()

	r := newTestResolver(t, &fakeSearcher{tracks: makeTracks(50)}, nil)
	for i := 0; i < 20; i++ {
		got := r.Resolve(context.Background(), "sad")
		seen := make(map[string]bool, len(got))
		for _, tr := range got {
			if seen[tr.Key()] {
				t.Fatalf("sample contains duplicate %q: %v", tr.Key(), got)
			}
			seen[tr.Key()] = true
		}
	}
}

func TestResolveQueriesNormalizedTerm(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{tracks: makeTracks(5)}
	r := newTestResolver(t, s, nil)
	r.Resolve(context.Background(), "  HAPPY ")

	if len(s.queries) != 1 || s.queries[0] != "upbeat bollywood" || s.limits[0] != 50 {
		t.Fatalf("unexpected searches %v limits %v", s.queries, s.limits)
	}
}

func TestResolveCacheHitWithinTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := &fakeSearcher{tracks: makeTracks(10)}
	r := newTestResolver(t, s, clock)

	r.Resolve(context.Background(), "happy")
	clock.Advance(9 * time.Minute)
	r.Resolve(context.Background(), "Happy")
	if got := s.calls.Load(); got != 1 {
		t.Fatalf("catalog called %d times within TTL, want 1", got)
	}

	clock.Advance(time.Minute)
	r.Resolve(context.Background(), "happy")
	if got := s.calls.Load(); got != 2 {
		t.Fatalf("catalog called %d times after TTL, want 2", got)
	}
}

func TestResolveSharesKeyAcrossSynonyms(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{tracks: makeTracks(5)}
	r := newTestResolver(t, s, nil)

	for _, m := range []string{"Neutral", "none", "", "No face detected", "bored"} {
		r.Resolve(context.Background(), m)
	}
	if got := s.calls.Load(); got != 1 {
		t.Fatalf("moods normalizing to chill made %d catalog calls, want 1", got)
	}
}

func TestResolveDeduplicatesByTrackID(t *testing.T) {
	t.Parallel()

	tracks := makeTracks(6)
	dup := tracks[2]
	dup.Name = "Same id, different title"
	tracks = append(tracks, dup, tracks[0])

	r := newTestResolver(t, &fakeSearcher{tracks: tracks}, nil)
	r.Resolve(context.Background(), "angry")

	cached, ok := r.Cached("angry")
	if !ok {
		t.Fatal("expected cache entry")
	}
	if len(cached) != 6 {
		t.Fatalf("cached %d tracks, want 6 unique", len(cached))
	}
	if cached[2].Name != "Song track02" {
		t.Errorf("first occurrence must win, got %q", cached[2].Name)
	}
	for i, tr := range cached {
		if tr.ID != fmt.Sprintf("track%02d", i) {
			t.Errorf("order changed at %d: %s", i, tr.ID)
		}
	}
}

func TestResolveFailureIsNotCached(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{err: errors.New("dial tcp: connection refused")}
	r := newTestResolver(t, s, nil)

	got := r.Resolve(context.Background(), "happy")
	if countFallbacks(got) != 5 {
		t.Fatalf("want 5 identical fallback tracks, got %v", got)
	}
	if _, ok := r.Cached("happy"); ok {
		t.Fatal("cache must remain unset for happy")
	}

	r.Resolve(context.Background(), "happy")
	if got := s.calls.Load(); got != 2 {
		t.Errorf("retry expected on next call, catalog calls = %d", got)
	}
}

func TestResolveTimeoutFallsBack(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{tracks: makeTracks(5), gate: make(chan struct{})}
	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond
	r, err := NewResolver(s, opts, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	got := r.Resolve(context.Background(), "fear")
	if time.Since(start) > 2*time.Second {
		t.Fatal("catalog timeout was not enforced")
	}
	if countFallbacks(got) != 5 {
		t.Errorf("timeout should degrade to fallback, got %v", got)
	}
}

func TestResolveConcurrentMissesShareOneSearch(t *testing.T) {
	t.Parallel()

	s := &fakeSearcher{tracks: makeTracks(8), gate: make(chan struct{})}
	r := newTestResolver(t, s, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Resolve(context.Background(), "surprise"); len(got) != 5 {
				t.Errorf("got %d tracks", len(got))
			}
		}()
	}

	// Let the goroutines pile up on the in-flight search, then release it.
	time.Sleep(20 * time.Millisecond)
	close(s.gate)
	wg.Wait()

	if got := s.calls.Load(); got != 1 {
		t.Fatalf("catalog called %d times for one key, want 1", got)
	}
}

func TestResolverPurgeExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := newTestResolver(t, &fakeSearcher{tracks: makeTracks(5)}, clock)
	r.Resolve(context.Background(), "happy")
	r.Resolve(context.Background(), "sad")

	clock.Advance(11 * time.Minute)
	if removed := r.PurgeExpired(); removed != 2 {
		t.Fatalf("PurgeExpired() = %d, want 2", removed)
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero ttl", func(o *Options) { o.TTL = 0 }, true},
		{"zero size", func(o *Options) { o.ResultSize = 0 }, true},
		{"limit below size", func(o *Options) { o.SearchLimit = 3 }, true},
		{"zero timeout", func(o *Options) { o.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := DefaultOptions()
			tt.mutate(&o)
			if err := o.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewResolverRejectsNilSearcher(t *testing.T) {
	t.Parallel()
	if _, err := NewResolver(nil, DefaultOptions(), logging.NewTestLogger(io.Discard)); err == nil {
		t.Fatal("expected error for nil searcher")
	}
}
