// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute)
	c.Set("key1", "value1")

	value, ok := c.Get("key1")
	if !ok || value != "value1" {
		t.Fatalf("Get(key1) = %q, %v", value, ok)
	}
	if _, ok := c.Get("key2"); ok {
		t.Error("expected key2 to be absent")
	}

	c.Delete("key1")
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be deleted")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 2 || stats.Evictions != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewWithClock[int](10*time.Minute, clock.Now)
	c.Set("happy", 1)

	clock.Advance(10*time.Minute - time.Second)
	if _, ok := c.Get("happy"); !ok {
		t.Fatal("entry should still be live just before TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("happy"); ok {
		t.Fatal("entry must not be returned at TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on Get, len = %d", c.Len())
	}
}

func TestCacheSetRefreshesExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewWithClock[string](time.Minute, clock.Now)
	c.Set("k", "a")
	clock.Advance(50 * time.Second)
	c.Set("k", "b")
	clock.Advance(50 * time.Second)

	if v, ok := c.Get("k"); !ok || v != "b" {
		t.Fatalf("Get(k) = %q, %v; want refreshed value", v, ok)
	}
}

func TestCachePurge(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewWithClock[int](time.Minute, clock.Now)
	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)

	clock.Advance(2 * time.Minute)
	if removed := c.Purge(); removed != 1 {
		t.Fatalf("Purge() removed %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if stats := c.Stats(); !stats.LastCleanup.Equal(clock.Now()) || stats.TotalKeys != 1 {
		t.Errorf("unexpected stats after purge %+v", stats)
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := New[int](time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() after Clear = %d", c.Len())
	}
	if stats := c.Stats(); stats.Evictions != 5 || stats.TotalKeys != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestStatsHitRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{"empty", Stats{}, 0},
		{"all hits", Stats{Hits: 4}, 100},
		{"half", Stats{Hits: 2, Misses: 2}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.stats.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%10)
				c.Set(key, g)
				c.Get(key)
				if i%50 == 0 {
					c.Purge()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10", c.Len())
	}
}
