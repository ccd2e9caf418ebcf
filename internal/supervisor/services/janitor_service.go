// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package services provides suture.Service wrappers for MoodTune components.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Purger drops expired cache entries and reports how many it removed.
// Satisfied by *recommend.Resolver.
type Purger interface {
	PurgeExpired() int
}

// CacheJanitorService periodically purges expired recommendation lists.
// Reads already treat expired entries as misses; the janitor only bounds
// memory held by moods nobody asks for again.
type CacheJanitorService struct {
	purger   Purger
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheJanitorService creates a janitor running every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(purger Purger, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		purger:   purger,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("cache janitor starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache janitor shutting down")
			return ctx.Err()

		case <-ticker.C:
			if n := s.purger.PurgeExpired(); n > 0 {
				s.logger.Debug().Int("purged", n).Msg("expired recommendation lists purged")
			}
		}
	}
}

// String returns the service name for logging.
func (s *CacheJanitorService) String() string {
	return s.name
}
