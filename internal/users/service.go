// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/tomtom215/moodtune/internal/config"
	"github.com/tomtom215/moodtune/internal/logging"
)

// Registration is the input for creating an account.
type Registration struct {
	Username string
	Password string
	Email    string
	Gender   string
	Age      string
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Email  string
	Gender string
	Age    string
}

// Service implements account operations on top of a Store.
type Service struct {
	store Store
	cost  int
	// dummyHash keeps unknown-user logins as slow as wrong-password ones.
	dummyHash string
}

// NewService creates a Service hashing with the given bcrypt cost.
func NewService(store Store, cost int) (*Service, error) {
	dummy, err := HashPassword("moodtune-timing-equalizer", cost)
	if err != nil {
		return nil, err
	}
	return &Service{store: store, cost: cost, dummyHash: dummy}, nil
}

// Store returns the underlying repository.
func (s *Service) Store() Store {
	return s.store
}

// Register creates an account. Fields are trimmed; a blank username or
// password is rejected.
func (s *Service) Register(ctx context.Context, r Registration) (Profile, error) {
	username := strings.TrimSpace(r.Username)
	if username == "" || r.Password == "" {
		return Profile{}, ErrMissingCredentials
	}
	hash, err := HashPassword(r.Password, s.cost)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(r.Email),
		Gender:       strings.TrimSpace(r.Gender),
		Age:          strings.TrimSpace(r.Age),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	logging.Ctx(ctx).Info().Str("username", username).Msg("user registered")
	return p, nil
}

// Authenticate verifies a username and password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Profile, error) {
	p, err := s.store.Get(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		CheckPassword(s.dummyHash, password)
		return Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}
	if !CheckPassword(p.PasswordHash, password) {
		return Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

// Profile returns the stored profile for username.
func (s *Service) Profile(ctx context.Context, username string) (Profile, error) {
	return s.store.Get(ctx, username)
}

// UpdateProfile replaces the editable fields of an existing profile.
func (s *Service) UpdateProfile(ctx context.Context, username string, u ProfileUpdate) (Profile, error) {
	p, err := s.store.Get(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	p.Email = strings.TrimSpace(u.Email)
	p.Gender = strings.TrimSpace(u.Gender)
	p.Age = strings.TrimSpace(u.Age)
	if err := s.store.Put(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Others lists every username except self, sorted.
func (s *Service) Others(ctx context.Context, self string) ([]string, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Without(names, self), nil
}

// EnsureSeed creates the configured default account when the store is
// empty. It reports whether an account was created.
func (s *Service) EnsureSeed(ctx context.Context, cfg config.SeedConfig) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}
	names, err := s.store.List(ctx)
	if err != nil {
		return false, err
	}
	if len(names) > 0 {
		return false, nil
	}
	if _, err := s.Register(ctx, Registration{Username: cfg.Username, Password: cfg.Password}); err != nil {
		if errors.Is(err, ErrExists) {
			return false, nil
		}
		return false, fmt.Errorf("seed user: %w", err)
	}
	logging.Warn().Str("username", cfg.Username).Msg("Created default account on empty user store; change its password")
	return true, nil
}
