// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodtune/config.yaml",
	"/etc/moodtune/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the process environment before koanf reads it.
const DotEnvFile = ".env"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTimeout:  24 * time.Hour,
			CookieSecure:    false,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Vision: VisionConfig{
			CascadePath:    "models/facefinder",
			MinFaceSize:    48,
			MaxFaceSize:    1000,
			MaxImageBytes:  8 << 20,
			MaxImagePixels: 40_000_000,
			CaptureEnabled: true,
			CaptureDir:     "captured_faces",
		},
		Classifier: ClassifierConfig{
			Backend:    BackendHOG,
			ModelPath:  "models/hog_linear.json",
			LabelsPath: "train",
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://api.spotify.com/v1",
			TokenURL:          "https://accounts.spotify.com/api/token",
			Market:            "IN",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 5,
		},
		Recommend: RecommendConfig{
			CacheTTL:    10 * time.Minute,
			Genre:       "bollywood",
			SearchLimit: 50,
			ResultSize:  5,
		},
		Storage: StorageConfig{
			Backend:      StorageFile,
			DataDir:      "data",
			UsersFile:    "users.json",
			MessagesFile: "messages.json",
			BadgerDir:    "badger",
		},
		Seed: SeedConfig{
			Enabled:  true,
			Username: "Pritam",
			Password: "1234",
		},
	}
}

// Load reads an optional .env file and then calls LoadWithKoanf.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}
	return LoadWithKoanf()
}

// LoadWithKoanf loads configuration in layers: defaults, then the YAML file
// (if any), then environment variables. The result is validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.Security.JWTSecret == "" && !cfg.IsProduction() {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Security.JWTSecret = secret
		cfg.Security.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps flat environment variable names (lower-cased) to koanf
// paths. Unlisted variables are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"jwt_secret":          "security.jwt_secret",
	"jwt_secret_key":      "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"cookie_secure":       "security.cookie_secure",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"face_cascade_path": "vision.cascade_path",
	"min_face_size":     "vision.min_face_size",
	"max_face_size":     "vision.max_face_size",
	"max_image_bytes":   "vision.max_image_bytes",
	"max_image_pixels":  "vision.max_image_pixels",
	"capture_enabled":   "vision.capture_enabled",
	"capture_dir":       "vision.capture_dir",

	"classifier_backend": "classifier.backend",
	"model_path":         "classifier.model_path",
	"labels_path":        "classifier.labels_path",

	"spotify_api_url":       "catalog.base_url",
	"spotify_token_url":     "catalog.token_url",
	"spotify_client_id":     "catalog.client_id",
	"spotify_client_secret": "catalog.client_secret",
	"spotify_market":        "catalog.market",
	"catalog_timeout":       "catalog.timeout",
	"catalog_rps":           "catalog.requests_per_second",

	"recommend_cache_ttl":    "recommend.cache_ttl",
	"recommend_genre":        "recommend.genre",
	"recommend_search_limit": "recommend.search_limit",

	"storage_backend": "storage.backend",
	"data_dir":        "storage.data_dir",
	"users_file":      "storage.users_file",
	"messages_file":   "storage.messages_file",
	"badger_dir":      "storage.badger_dir",

	"seed_user_enabled":  "seed.enabled",
	"seed_user_name":     "seed.username",
	"seed_user_password": "seed.password",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
