// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/classify"
	"github.com/tomtom215/moodtune/internal/config"
	"github.com/tomtom215/moodtune/internal/vision"
)

type noFaces struct{}

func (noFaces) Detect(*image.Gray) []vision.FaceBox { return nil }

type constClassifier struct{}

func (constClassifier) Classify(*image.Gray) (classify.Label, error) { return "Happy", nil }
func (constClassifier) Labels() []classify.Label                     { return classify.DefaultLabels() }
func (constClassifier) Backend() string                              { return "const" }

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            5000,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Security: config.SecurityConfig{
			JWTSecret:         "app-test-secret-that-is-long-enough-0123456789",
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
		},
		Vision: config.VisionConfig{MaxImageBytes: 1 << 20, MaxImagePixels: 1 << 20},
		Catalog: config.CatalogConfig{
			Timeout: time.Second,
		},
		Recommend: config.RecommendConfig{
			CacheTTL:    time.Minute,
			Genre:       "bollywood",
			SearchLimit: 10,
			ResultSize:  5,
		},
		Storage: config.StorageConfig{
			Backend:      backend,
			DataDir:      dir,
			UsersFile:    "users.json",
			MessagesFile: "messages.json",
			BadgerDir:    "badger",
		},
		Seed: config.SeedConfig{Enabled: true, Username: "seed", Password: "1234"},
	}
}

func failingSearch(context.Context, string, int) ([]catalog.Track, error) {
	return nil, errors.New("catalog offline")
}

func newTestApp(t *testing.T, backend string) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(t, backend),
		WithDetector(noFaces{}),
		WithClassifier(constClassifier{}),
		WithSearcher(catalog.SearcherFunc(failingSearch)),
		WithBcryptCost(bcrypt.MinCost),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return a
}

func TestOpenStores(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{config.StorageFile, config.StorageBadger} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t, backend)
			stores, err := OpenStores(&cfg.Storage)
			if err != nil {
				t.Fatalf("OpenStores() error = %v", err)
			}
			ctx := context.Background()
			if _, err := stores.Messages.Append(ctx, "a", "b", "hi"); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			got, err := stores.Messages.Query(ctx, "b", "a")
			if err != nil || len(got) != 1 {
				t.Fatalf("Query() = %v, %v; want one message", got, err)
			}
			if err := stores.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestOpenStoresUnknownBackend(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, "sqlite")
	if _, err := OpenStores(&cfg.Storage); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewSeedsAccount(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, config.StorageFile)
	if _, err := a.Accounts.Profile(context.Background(), "seed"); err != nil {
		t.Fatalf("seed account missing: %v", err)
	}
	if want := filepath.Join(a.Config.Storage.DataDir, "users.json"); a.Config.Storage.UsersPath() != want {
		t.Errorf("UsersPath() = %q, want %q", a.Config.Storage.UsersPath(), want)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := testConfig(t, config.StorageFile)
	cfg.Recommend.ResultSize = 0
	_, err := New(context.Background(), cfg,
		WithDetector(noFaces{}),
		WithClassifier(constClassifier{}),
		WithBcryptCost(bcrypt.MinCost),
	)
	if err == nil {
		t.Fatal("expected error for zero result size")
	}
}

func TestHTTPServer(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, config.StorageFile)
	srv := a.HTTPServer()
	if srv.Addr != "127.0.0.1:5000" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.Handler == nil {
		t.Error("Handler is nil")
	}
}

// The wired router should log in the seeded account and serve fallback
// tracks while the catalog is down.
func TestEndToEnd(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{config.StorageFile, config.StorageBadger} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			a := newTestApp(t, backend)
			srv := httptest.NewServer(a.Handler)
			defer srv.Close()

			body := `{"username":"seed","password":"1234"}`
			resp, err := http.Post(srv.URL+"/api/v1/auth/login", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			var login struct {
				Data struct {
					Token string `json:"token"`
				} `json:"data"`
			}
			err = json.NewDecoder(resp.Body).Decode(&login)
			resp.Body.Close()
			if err != nil || resp.StatusCode != http.StatusOK || login.Data.Token == "" {
				t.Fatalf("login status = %d, err = %v", resp.StatusCode, err)
			}

			req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/songs", bytes.NewBufferString(`{"mood":"Happy"}`))
			req.Header.Set("Authorization", "Bearer "+login.Data.Token)
			req.Header.Set("Content-Type", "application/json")
			resp, err = http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			var songs struct {
				Mood  string          `json:"mood"`
				Songs []catalog.Track `json:"songs"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&songs); err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("songs status = %d", resp.StatusCode)
			}
			if songs.Mood != "upbeat" || len(songs.Songs) != 5 {
				t.Errorf("songs = %+v, want 5 tracks for upbeat", songs)
			}
			if a.Breaker.State() != "closed" {
				t.Errorf("breaker state = %q", a.Breaker.State())
			}
		})
	}
}
