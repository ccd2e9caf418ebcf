// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package app assembles the MoodTune components from configuration.
//
// Both cmd/server and cmd/moodctl build on it so the stores, the inference
// pipeline and the recommendation resolver are wired the same way in every
// entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/tomtom215/moodtune/internal/api"
	"github.com/tomtom215/moodtune/internal/auth"
	"github.com/tomtom215/moodtune/internal/catalog"
	"github.com/tomtom215/moodtune/internal/chat"
	"github.com/tomtom215/moodtune/internal/classify"
	"github.com/tomtom215/moodtune/internal/config"
	"github.com/tomtom215/moodtune/internal/logging"
	"github.com/tomtom215/moodtune/internal/mood"
	"github.com/tomtom215/moodtune/internal/predict"
	"github.com/tomtom215/moodtune/internal/recommend"
	"github.com/tomtom215/moodtune/internal/storage"
	"github.com/tomtom215/moodtune/internal/users"
	"github.com/tomtom215/moodtune/internal/vision"
)

// Stores holds the persistence layer selected by the storage section.
type Stores struct {
	Users    users.Store
	Messages chat.Store
	db       *badger.DB
}

// OpenStores opens the user and chat stores. With the badger backend both
// share one database, which Close releases after the stores.
func OpenStores(cfg *config.StorageConfig) (*Stores, error) {
	switch cfg.Backend {
	case config.StorageFile, "":
		return &Stores{
			Users:    users.NewFileStore(cfg.UsersPath()),
			Messages: chat.NewFileStore(cfg.MessagesPath()),
		}, nil
	case config.StorageBadger:
		db, err := storage.OpenBadger(cfg.BadgerPath(), storage.BadgerOptions{SyncWrites: true})
		if err != nil {
			return nil, err
		}
		return storesOnBadger(db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func storesOnBadger(db *badger.DB) (*Stores, error) {
	messages, err := chat.NewBadgerStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open chat store: %w", err)
	}
	return &Stores{
		Users:    users.NewBadgerStore(db),
		Messages: messages,
		db:       db,
	}, nil
}

// Close releases every store, collecting all failures.
func (s *Stores) Close() error {
	var result *multierror.Error
	if s.Messages != nil {
		if err := s.Messages.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close chat store: %w", err))
		}
	}
	if s.Users != nil {
		if err := s.Users.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close user store: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close badger db: %w", err))
		}
	}
	return result.ErrorOrNil()
}

// Option overrides a component New would otherwise build from config.
type Option func(*options)

type options struct {
	detector   vision.Detector
	classifier classify.Classifier
	searcher   catalog.Searcher
	stores     *Stores
	cost       int
}

// WithDetector replaces the pigo face detector.
func WithDetector(d vision.Detector) Option {
	return func(o *options) { o.detector = d }
}

// WithClassifier replaces the classifier loaded from the model files.
func WithClassifier(c classify.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithSearcher replaces the Spotify catalog client. The circuit breaker
// still wraps it.
func WithSearcher(s catalog.Searcher) Option {
	return func(o *options) { o.searcher = s }
}

// WithStores uses already opened stores. App.Close still closes them.
func WithStores(s *Stores) Option {
	return func(o *options) { o.stores = s }
}

// WithBcryptCost overrides users.DefaultBcryptCost.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.cost = cost }
}

// App is a fully wired MoodTune instance.
type App struct {
	Config    *config.Config
	Stores    *Stores
	Accounts  *users.Service
	Moods     *mood.State
	Predictor *predict.Predictor
	Resolver  *recommend.Resolver
	Breaker   *catalog.BreakerSearcher
	JWT       *auth.JWTManager
	Sessions  *auth.Middleware
	Handler   http.Handler
}

// New builds every component. On error anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	o := options{cost: users.DefaultBcryptCost}
	for _, opt := range opts {
		opt(&o)
	}

	stores := o.stores
	if stores == nil {
		var err error
		if stores, err = OpenStores(&cfg.Storage); err != nil {
			return nil, err
		}
	}
	a := &App{Config: cfg, Stores: stores, Moods: mood.NewState()}

	if err := a.build(ctx, &o); err != nil {
		if cerr := a.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, o *options) error {
	cfg := a.Config

	accounts, err := users.NewService(a.Stores.Users, o.cost)
	if err != nil {
		return err
	}
	if _, err := accounts.EnsureSeed(ctx, cfg.Seed); err != nil {
		return err
	}
	a.Accounts = accounts

	if a.Predictor, err = NewPredictor(cfg, a.Moods, o.detector, o.classifier); err != nil {
		return err
	}
	if a.Resolver, a.Breaker, err = NewResolver(cfg, o.searcher); err != nil {
		return err
	}

	if a.JWT, err = auth.NewJWTManager(&cfg.Security); err != nil {
		return fmt.Errorf("jwt manager: %w", err)
	}
	a.Sessions = auth.NewMiddleware(a.JWT, cfg.Security.CookieSecure, api.WriteError)

	handler, err := api.NewHandler(api.Deps{
		Predictor:     a.Predictor,
		Recommender:   a.Resolver,
		Messages:      a.Stores.Messages,
		Accounts:      a.Accounts,
		Moods:         a.Moods,
		JWTManager:    a.JWT,
		Sessions:      a.Sessions,
		MaxImageBytes: cfg.Vision.MaxImageBytes,
	})
	if err != nil {
		return err
	}
	chiMW := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security))
	a.Handler = api.NewRouter(handler, chiMW, a.Sessions).SetupChi()
	return nil
}

// NewPredictor builds the inference pipeline. A nil detector or classifier
// is loaded from the vision and classifier sections.
func NewPredictor(cfg *config.Config, state *mood.State, detector vision.Detector, classifier classify.Classifier) (*predict.Predictor, error) {
	var err error
	if classifier == nil {
		if classifier, err = classify.New(cfg.Classifier); err != nil {
			return nil, fmt.Errorf("load classifier: %w", err)
		}
	}
	if detector == nil {
		detector, err = vision.NewPigoDetector(vision.PigoConfig{
			CascadePath: cfg.Vision.CascadePath,
			MinSize:     cfg.Vision.MinFaceSize,
			MaxSize:     cfg.Vision.MaxFaceSize,
		})
		if err != nil {
			return nil, fmt.Errorf("load face cascade: %w", err)
		}
	}

	var capturer *vision.Capturer
	if cfg.Vision.CaptureEnabled {
		capturer = vision.NewCapturer(cfg.Vision.CaptureDir)
	}

	logging.Info().
		Str("backend", classifier.Backend()).
		Int("labels", len(classifier.Labels())).
		Bool("capture", capturer != nil).
		Msg("Inference pipeline ready")

	return predict.New(predict.Options{
		Detector:       detector,
		Classifier:     classifier,
		State:          state,
		Capturer:       capturer,
		MaxImageBytes:  cfg.Vision.MaxImageBytes,
		MaxImagePixels: cfg.Vision.MaxImagePixels,
	})
}

// NewResolver builds the recommendation resolver behind a circuit breaker.
// A nil searcher means the Spotify client from the catalog section.
func NewResolver(cfg *config.Config, searcher catalog.Searcher) (*recommend.Resolver, *catalog.BreakerSearcher, error) {
	if searcher == nil {
		searcher = catalog.NewSpotifyClient(&cfg.Catalog)
	}
	breaker := catalog.NewBreakerSearcher(searcher, catalog.DefaultBreakerSettings())
	resolver, err := recommend.NewResolver(breaker, recommend.OptionsFromConfig(cfg), logging.Logger())
	if err != nil {
		return nil, nil, err
	}
	return resolver, breaker, nil
}

// Addr is the listen address from the server section.
func (a *App) Addr() string {
	return net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port))
}

// HTTPServer returns an unstarted server for Handler.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              a.Addr(),
		Handler:           a.Handler,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
	}
}

// Close releases the stores.
func (a *App) Close() error {
	if a.Stores == nil {
		return nil
	}
	return a.Stores.Close()
}
