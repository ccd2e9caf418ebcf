// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package config loads MoodTune configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence
// (environment wins). See LoadWithKoanf.
//
// Config is immutable after loading and safe for concurrent reads.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Vision     VisionConfig     `koanf:"vision"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Storage    StorageConfig    `koanf:"storage"`
	Seed       SeedConfig       `koanf:"seed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// SecurityConfig holds session, CORS and rate limiting settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// GeneratedSecret is set when no secret was configured and an ephemeral
	// one was generated at load time. Sessions do not survive a restart.
	GeneratedSecret bool `koanf:"-"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// VisionConfig controls image decoding, face detection and frame capture.
type VisionConfig struct {
	// CascadePath points at a pigo face cascade (e.g. "facefinder").
	CascadePath    string `koanf:"cascade_path"`
	MinFaceSize    int    `koanf:"min_face_size"`
	MaxFaceSize    int    `koanf:"max_face_size"`
	MaxImageBytes  int    `koanf:"max_image_bytes"`
	MaxImagePixels int    `koanf:"max_image_pixels"` // width*height
	CaptureEnabled bool   `koanf:"capture_enabled"`
	CaptureDir     string `koanf:"capture_dir"`
}

// ClassifierConfig selects and locates the emotion classifier.
type ClassifierConfig struct {
	// Backend is "hog" (gradient histogram + linear model) or "cnn".
	Backend   string `koanf:"backend"`
	ModelPath string `koanf:"model_path"`
	// LabelsPath is a newline separated label file, or a directory whose
	// subdirectory names are the labels. Only used by the hog backend.
	LabelsPath string `koanf:"labels_path"`
}

// CatalogConfig holds Spotify Web API settings.
type CatalogConfig struct {
	BaseURL           string        `koanf:"base_url"`
	TokenURL          string        `koanf:"token_url"`
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	Market            string        `koanf:"market"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// RecommendConfig controls track resolution.
type RecommendConfig struct {
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	Genre       string        `koanf:"genre"`
	SearchLimit int           `koanf:"search_limit"`
	ResultSize  int           `koanf:"result_size"`
}

// StorageConfig selects the persistence backend for users and messages.
type StorageConfig struct {
	// Backend is "file" (flat JSON documents) or "badger".
	Backend      string `koanf:"backend"`
	DataDir      string `koanf:"data_dir"`
	UsersFile    string `koanf:"users_file"`
	MessagesFile string `koanf:"messages_file"`
	BadgerDir    string `koanf:"badger_dir"`
}

// SeedConfig describes the default account created on an empty user store.
type SeedConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

const (
	BackendHOG = "hog"
	BackendCNN = "cnn"

	StorageFile   = "file"
	StorageBadger = "badger"
)
