// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moodtune/internal/config"
	"github.com/tomtom215/moodtune/internal/metrics"
)

const maxErrorBodySize = 64 * 1024

// StatusError is a non-2xx catalog response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned HTTP %d: %s", e.Code, e.Body)
}

// SpotifyClient searches tracks through the Spotify Web API using the
// client-credentials flow. Tokens are fetched and refreshed by oauth2.
type SpotifyClient struct {
	baseURL    string
	market     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyClient creates a client from catalog configuration. Missing
// credentials are not an error here; Search reports them as ErrUnavailable
// so the service still starts and serves fallback tracks.
func NewSpotifyClient(cfg *config.CatalogConfig) *SpotifyClient {
	base := &http.Client{Timeout: cfg.Timeout}
	var client *http.Client
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(tokenCtx)
		client.Timeout = cfg.Timeout
	}

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &SpotifyClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		market:     cfg.Market,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// newSpotifyClientWithHTTP is used by tests to bypass OAuth.
func newSpotifyClientWithHTTP(baseURL string, hc *http.Client) *SpotifyClient {
	return &SpotifyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"items"`
	} `json:"tracks"`
}

// Search implements Searcher. Results keep catalog order; items without an
// ID are skipped.
func (c *SpotifyClient) Search(ctx context.Context, query string, limit int) (tracks []Track, err error) {
	start := time.Now()
	defer func() { metrics.RecordCatalogRequest(time.Since(start), err) }()

	if c.httpClient == nil {
		return nil, fmt.Errorf("%w: credentials not configured", ErrUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrUnavailable, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	if c.market != "" {
		params.Set("market", c.market)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, &StatusError{Code: resp.StatusCode, Body: readBodyForError(resp.Body)})
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}

	tracks = make([]Track, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		if item.ID == "" {
			continue
		}
		artist := "Unknown"
		if len(item.Artists) > 0 && item.Artists[0].Name != "" {
			artist = item.Artists[0].Name
		}
		name := item.Name
		if name == "" {
			name = "Unknown"
		}
		tracks = append(tracks, Track{ID: item.ID, Name: name, Artist: artist, URL: EmbedURLPrefix + item.ID})
	}
	return tracks, nil
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}
