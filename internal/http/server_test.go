package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomcoffee/kimono-sim/internal/planner"
	"github.com/tomcoffee/kimono-sim/internal/store/memory"
)

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestReadyEndpointBeforeAndAfterLoad(t *testing.T) {
	pl := planner.New(memory.New(), nil, planner.DefaultConfig())
	srv := NewServer(":0", pl, nil)
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before load, got %d", rec.Code)
	}

	pl.Load(context.Background())

	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after load, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected DENY, got %q", got)
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv := newTestServer(t)

	var lastCode int
	for i := 0; i < 61; i++ {
		body := bytes.NewBufferString(`{"id":999,"field":"sales","value":"1"}`)
		req := httptest.NewRequest(http.MethodPost, "/plan/edits", body)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 61 requests, got %d", lastCode)
	}
}

func TestRateLimitDoesNotThrottleGets(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/plan", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestViewCacheStaysCoherentAcrossEdits(t *testing.T) {
	srv := newTestServer(t)

	// Prime the cache.
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("prime GET failed: %d", rec.Code)
	}

	edit := bytes.NewBufferString(`{"id":2,"field":"sales","value":"7000000"}`)
	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plan/edits", edit))
	if rec.Code != http.StatusOK {
		t.Fatalf("edit failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan", nil))

	var view planner.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Records[1].Sales != 7_000_000 {
		t.Errorf("expected edited sales in fresh view, got %d", view.Records[1].Sales)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}
