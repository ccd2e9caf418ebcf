// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/moodtune/internal/cache"
	"github.com/tomtom215/moodtune/internal/config"
)

// Options tunes a Resolver.
type Options struct {
	// TTL is how long a catalog result stays cached.
	TTL time.Duration
	// Genre qualifies every catalog query ("upbeat bollywood").
	Genre string
	// SearchLimit is the number of tracks requested from the catalog.
	SearchLimit int
	// ResultSize is the exact number of tracks returned by Resolve.
	ResultSize int
	// Timeout bounds a single catalog search.
	Timeout time.Duration
	// Seed makes sampling reproducible when non-zero.
	Seed int64
	// Clock overrides time.Now for the cache.
	Clock cache.Clock
}

// DefaultOptions mirrors the default configuration.
func DefaultOptions() Options {
	return Options{
		TTL:         10 * time.Minute,
		Genre:       "bollywood",
		SearchLimit: 50,
		ResultSize:  5,
		Timeout:     5 * time.Second,
	}
}

// OptionsFromConfig builds Options from the recommend and catalog sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TTL:         cfg.Recommend.CacheTTL,
		Genre:       cfg.Recommend.Genre,
		SearchLimit: cfg.Recommend.SearchLimit,
		ResultSize:  cfg.Recommend.ResultSize,
		Timeout:     cfg.Catalog.Timeout,
	}
}

// Validate checks Options for values Resolve cannot work with.
func (o *Options) Validate() error {
	if o.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", o.TTL)
	}
	if o.ResultSize <= 0 {
		return errors.New("result size must be positive")
	}
	if o.SearchLimit < o.ResultSize {
		return fmt.Errorf("search limit %d is smaller than result size %d", o.SearchLimit, o.ResultSize)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	return nil
}
