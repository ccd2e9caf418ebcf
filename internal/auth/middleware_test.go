// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestMiddleware(t *testing.T) (*Middleware, *JWTManager) {
	t.Helper()
	m, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatal(err)
	}
	return NewMiddleware(m, true, nil), m
}

func identityHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Identity(r.Context())))
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	mw, jm := newTestMiddleware(t)
	token, err := jm.GenerateToken("alice")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer header",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
			wantBody:   "alice",
		},
		{
			name:       "lowercase scheme",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) },
			wantStatus: http.StatusOK,
			wantBody:   "alice",
		},
		{
			name:       "cookie",
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token}) },
			wantStatus: http.StatusOK,
			wantBody:   "alice",
		},
		{
			name:       "missing",
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "basic scheme",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad token",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			mw.Authenticate(identityHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuthenticateCustomErrorWriter(t *testing.T) {
	t.Parallel()

	jm, _ := NewJWTManager(testSecurityConfig())
	var gotStatus int
	mw := NewMiddleware(jm, false, func(w http.ResponseWriter, _ *http.Request, status int, _ string) {
		gotStatus = status
		w.WriteHeader(status)
	})

	rec := httptest.NewRecorder()
	mw.Authenticate(identityHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if gotStatus != http.StatusUnauthorized {
		t.Fatalf("error writer got status %d", gotStatus)
	}
}

func TestSessionCookies(t *testing.T) {
	t.Parallel()

	mw, _ := newTestMiddleware(t)

	rec := httptest.NewRecorder()
	mw.SetSessionCookie(rec, "tok")
	c := rec.Result().Cookies()
	if len(c) != 1 || c[0].Value != "tok" || !c[0].HttpOnly || !c[0].Secure || c[0].MaxAge != 3600 {
		t.Fatalf("unexpected cookie %+v", c)
	}

	rec = httptest.NewRecorder()
	mw.ClearSessionCookie(rec)
	c = rec.Result().Cookies()
	if len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", c)
	}
}

func TestIdentityOutsideMiddleware(t *testing.T) {
	t.Parallel()
	if got := Identity(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("Identity() = %q, want empty", got)
	}
}
