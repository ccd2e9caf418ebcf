// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour

	minJWTSecretLength = 32

	// Classifier crops are 48x48, smaller faces are upsampled noise.
	minFaceSizeFloor = 20
)

// Validate checks the configuration for missing or out of range values.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateVision,
		c.validateClassifier,
		c.validateCatalog,
		c.validateRecommend,
		c.validateStorage,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
	}
	return c.validateRateLimits()
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateVision() error {
	if c.Vision.CascadePath == "" {
		return fmt.Errorf("FACE_CASCADE_PATH is required")
	}
	if c.Vision.MinFaceSize < minFaceSizeFloor {
		return fmt.Errorf("MIN_FACE_SIZE must be at least %d", minFaceSizeFloor)
	}
	if c.Vision.MaxFaceSize < c.Vision.MinFaceSize {
		return fmt.Errorf("MAX_FACE_SIZE must not be smaller than MIN_FACE_SIZE")
	}
	if c.Vision.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	if c.Vision.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be positive")
	}
	if c.Vision.CaptureEnabled && c.Vision.CaptureDir == "" {
		return fmt.Errorf("CAPTURE_DIR is required when capture is enabled")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Backend {
	case BackendHOG:
		if c.Classifier.LabelsPath == "" {
			return fmt.Errorf("LABELS_PATH is required for the hog classifier")
		}
	case BackendCNN:
	default:
		return fmt.Errorf("CLASSIFIER_BACKEND must be %q or %q, got %q", BackendHOG, BackendCNN, c.Classifier.Backend)
	}
	if c.Classifier.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("SPOTIFY_API_URL must be an http(s) URL")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive")
	}
	if c.Catalog.RequestsPerSecond <= 0 {
		return fmt.Errorf("CATALOG_RPS must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.CacheTTL <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive")
	}
	if c.Recommend.ResultSize < 1 {
		return fmt.Errorf("recommend.result_size must be at least 1")
	}
	if c.Recommend.SearchLimit < c.Recommend.ResultSize || c.Recommend.SearchLimit > 50 {
		return fmt.Errorf("RECOMMEND_SEARCH_LIMIT must be between %d and 50", c.Recommend.ResultSize)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.UsersFile == "" || c.Storage.MessagesFile == "" {
			return fmt.Errorf("USERS_FILE and MESSAGES_FILE are required for file storage")
		}
	case StorageBadger:
		if c.Storage.BadgerDir == "" {
			return fmt.Errorf("BADGER_DIR is required for badger storage")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageFile, StorageBadger, c.Storage.Backend)
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// UsersPath returns the users document path under the data directory.
func (s StorageConfig) UsersPath() string {
	return filepath.Join(s.DataDir, s.UsersFile)
}

// MessagesPath returns the message log path under the data directory.
func (s StorageConfig) MessagesPath() string {
	return filepath.Join(s.DataDir, s.MessagesFile)
}

// BadgerPath returns the badger directory under the data directory.
func (s StorageConfig) BadgerPath() string {
	return filepath.Join(s.DataDir, s.BadgerDir)
}
