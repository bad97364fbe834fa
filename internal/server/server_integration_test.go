package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nandita/sightline/internal/app"
	"github.com/nandita/sightline/internal/store"
)

func testServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	a := app.New(app.Config{Store: s})

	srv := New(Config{Store: s, App: a})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return ts, a
}

func TestAPI_ModeAndParamsWorkflow(t *testing.T) {
	ts, a := testServer(t)
	client := ts.Client()

	// 1. Switch to currency mode and enable processing.
	body := `{"mode": "currency", "enabled": true}`
	resp, err := client.Post(ts.URL+"/api/mode", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /api/mode error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /api/mode status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	if a.Mode() != app.ModeCurrency || !a.IsEnabled() {
		t.Fatalf("app state = %v/%v, want currency/enabled", a.Mode(), a.IsEnabled())
	}

	// 2. Tune the stop distance.
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/params", bytes.NewBufferString(`{"stop_mm": 1100}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/params error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /api/params status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 3. Read the params back.
	resp, err = client.Get(ts.URL + "/api/params")
	if err != nil {
		t.Fatalf("GET /api/params error = %v", err)
	}
	var params struct {
		StopMM *int `json:"stop_mm"`
	}
	json.NewDecoder(resp.Body).Decode(&params)
	resp.Body.Close()
	if params.StopMM == nil || *params.StopMM != 1100 {
		t.Errorf("stop_mm = %v, want 1100", params.StopMM)
	}

	// 4. The mode switch should be in the event log.
	resp, err = client.Get(ts.URL + "/api/events?limit=10")
	if err != nil {
		t.Fatalf("GET /api/events error = %v", err)
	}
	var events struct {
		Events []*store.Event `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&events)
	resp.Body.Close()

	found := false
	for _, e := range events.Events {
		if e.Kind == store.EventKindMode && e.Label == "currency" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a currency mode event, got %+v", events.Events)
	}
}

func TestAPI_ResultsWebSocket(t *testing.T) {
	ts, a := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/results"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// Mode switches publish a result; keep switching until the server
	// has registered our subscription and one lands.
	done := make(chan struct{})
	defer close(done)
	go func() {
		modes := []app.Mode{app.ModeObject, app.ModeCurrency}
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			a.SetMode(modes[i%len(modes)])
			time.Sleep(20 * time.Millisecond)
		}
	}()

	var result struct {
		Mode       string `json:"mode"`
		Generation uint64 `json:"generation"`
	}
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	if result.Mode != "object" && result.Mode != "currency" {
		t.Errorf("mode = %q, want object or currency", result.Mode)
	}
	if result.Generation == 0 {
		t.Error("published result should carry a non-zero generation")
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	ts, a := testServer(t)
	a.SetMode(app.ModeCurrency)

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status     string `json:"status"`
		Mode       string `json:"mode"`
		Enabled    bool   `json:"enabled"`
		Generation uint64 `json:"generation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want %q", health.Status, "ok")
	}
	if health.Mode != "currency" {
		t.Errorf("mode = %q, want %q", health.Mode, "currency")
	}
	if health.Generation == 0 {
		t.Error("generation should be non-zero after a mode switch")
	}
}
