// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
}

func requestFrom(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestWriteAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteAPIError(w, http.StatusUnprocessableEntity, "validation_failed", "Invalid input", map[string]string{"name": "required"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body APIError
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_failed" || body.Error.Message != "Invalid input" {
		t.Errorf("error = %+v", body.Error)
	}
	if body.Error.Details["name"] != "required" {
		t.Errorf("details = %v", body.Error.Details)
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	handler := NewRateLimiter(60, 2, discardLogger()).Middleware()(simpleOKHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1:5000"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:5001"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.2:5000"))
	if w.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 5, discardLogger())
	if rl != nil {
		t.Fatal("NewRateLimiter(0) should be nil")
	}
	handler := rl.Middleware()(simpleOKHandler)
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1:5000"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}

func TestLimiterCache_ResetsWhenFull(t *testing.T) {
	lc := newLimiterCache[string](1, 1, 2)
	a := lc.get("a")
	if lc.get("a") != a {
		t.Error("get() should return the cached limiter")
	}
	lc.get("b")
	lc.get("c")
	if got := lc.size(); got != 1 {
		t.Errorf("size after overflow = %d, want 1", got)
	}
}

func TestClientIP(t *testing.T) {
	if got := clientIP(requestFrom("192.0.2.7:1234")); got != "192.0.2.7" {
		t.Errorf("clientIP = %q", got)
	}
	if got := clientIP(requestFrom("192.0.2.7")); got != "192.0.2.7" {
		t.Errorf("clientIP without port = %q", got)
	}
}

func TestTimeout_NormalRequest(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Job-ID", "20260227-SI-01")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if w.Body.String() != "created" {
		t.Errorf("body = %q", w.Body.String())
	}
	if w.Header().Get("X-Job-ID") != "20260227-SI-01" {
		t.Error("handler headers should be copied")
	}
}

func TestTimeout_ImplicitOK(t *testing.T) {
	handler := Timeout(time.Second)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestTimeout_SlowRequest(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan error, 1)
	handler := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-release
		_, err := w.Write([]byte("late"))
		finished <- err
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"timeout"`) {
		t.Errorf("body = %q", w.Body.String())
	}

	close(release)
	if err := <-finished; err != http.ErrHandlerTimeout {
		t.Errorf("late write error = %v, want ErrHandlerTimeout", err)
	}
	if strings.Contains(w.Body.String(), "late") {
		t.Error("late write should be discarded")
	}
}

func TestTimeout_PanicPropagates(t *testing.T) {
	handler := chimw.Recoverer(Timeout(time.Second)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/fail", nil))

	out := buf.String()
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, "path=/health") || !strings.Contains(out, "status=200") {
		t.Errorf("missing info line: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=502") {
		t.Errorf("missing warn line: %s", out)
	}
	if !strings.Contains(out, "request_id=") {
		t.Errorf("missing request id: %s", out)
	}
}

func TestAPIHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	APIHeaders(simpleOKHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("missing no-store")
	}
}
