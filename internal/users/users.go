// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package users stores account profiles and verifies credentials.
package users

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a username has no profile.
	ErrNotFound = errors.New("user not found")
	// ErrExists is returned by Create for a taken username.
	ErrExists = errors.New("user already exists")
	// ErrMissingCredentials is returned by Register for a blank username or password.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Profile is a stored account. PasswordHash is a bcrypt hash and is never
// sent to clients; use View for that.
type Profile struct {
	Username     string `json:"-"`
	PasswordHash string `json:"password"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	Age          string `json:"age"`
}

// ProfileView is the client-facing profile.
type ProfileView struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
	Age      string `json:"age"`
}

// View strips the password hash.
func (p Profile) View() ProfileView {
	return ProfileView{Username: p.Username, Email: p.Email, Gender: p.Gender, Age: p.Age}
}

// Store is the profile repository. Implementations are safe for concurrent
// use.
type Store interface {
	Get(ctx context.Context, username string) (Profile, error)
	// Put inserts or replaces a profile.
	Put(ctx context.Context, p Profile) error
	// Create inserts a profile and fails with ErrExists if it is taken.
	Create(ctx context.Context, p Profile) error
	// List returns every username, sorted.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// StoreIOError is a persistence failure.
type StoreIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreIOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("user store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("user store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }
