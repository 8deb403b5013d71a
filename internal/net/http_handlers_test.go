package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"outbreak/server"
	"outbreak/server/internal/net/proto"
	"outbreak/server/internal/observability"
)

func newTestHub(t *testing.T) *server.Hub {
	t.Helper()
	cfg := server.DefaultHubConfig()
	cfg.World.HumanCount = 5
	cfg.World.ZombieCount = 2
	hub, err := server.NewHub(cfg, nil)
	if err != nil {
		t.Fatalf("failed to construct hub: %v", err)
	}
	t.Cleanup(hub.Close)
	return hub
}

func TestHealthReturnsOK(t *testing.T) {
	handler := NewHTTPHandler(newTestHub(t), HTTPHandlerConfig{})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "ok" {
		t.Fatalf("expected body ok, got %q", body)
	}
}

func TestStateReturnsSnapshot(t *testing.T) {
	hub := newTestHub(t)
	hub.Advance()
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/state", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}

	var state proto.StateMessage
	if err := json.Unmarshal(resp.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode state payload: %v", err)
	}
	if state.Type != proto.TypeState {
		t.Fatalf("expected type %q, got %q", proto.TypeState, state.Type)
	}
	if state.Population.Tick != 1 {
		t.Fatalf("expected tick 1 after one advance, got %d", state.Population.Tick)
	}
	if got := state.Population.Humans + state.Population.Zombies; got != 7 {
		t.Fatalf("expected population of 7, got %d", got)
	}
}

func TestHistoryReturnsSeries(t *testing.T) {
	hub := newTestHub(t)
	hub.Advance()
	hub.Advance()
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/history", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}

	var history proto.HistoryMessage
	if err := json.Unmarshal(resp.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history payload: %v", err)
	}
	// One sample for the reset plus one per tick.
	if len(history.Time) != 3 || len(history.Humans) != 3 || len(history.Zombies) != 3 {
		t.Fatalf("expected 3 history samples, got %+v", history)
	}
	if history.Time[0] != 0 {
		t.Fatalf("expected first sample at time 0, got %v", history.Time[0])
	}
}

func TestStateRejectsWrongMethod(t *testing.T) {
	handler := NewHTTPHandler(newTestHub(t), HTTPHandlerConfig{})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/state", nil))

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", resp.Code)
	}
}

func TestPprofRoutesAreOptIn(t *testing.T) {
	hub := newTestHub(t)

	disabled := NewHTTPHandler(hub, HTTPHandlerConfig{})
	resp := httptest.NewRecorder()
	disabled.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected pprof to be unavailable by default, got %d", resp.Code)
	}

	enabled := NewHTTPHandler(hub, HTTPHandlerConfig{Observability: observability.Config{EnablePprofTrace: true}})
	resp = httptest.NewRecorder()
	enabled.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index when enabled, got %d", resp.Code)
	}
}
