package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"imbalance-screener/src/config"
	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"
	"imbalance-screener/src/screener"
	"imbalance-screener/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeTokens struct{ degraded bool }

func (f *fakeTokens) AuthHeader() string {
	if f.degraded {
		return ""
	}
	return "app:token"
}
func (f *fakeTokens) Degraded() bool { return f.degraded }

type fakeSource struct{}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) FetchCandles(symbol string, days int) (models.MCandleSeries, error) {
	return nil, nil
}

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) (*WebServer, string) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &config.Config{MConfig: &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8080,
		LogLevel: "ERROR",
		Fyers:    models.MFyersConfig{ClientID: "APPID-100", SecretKey: "SECRET"},
		Screener: models.MScreenerConfig{
			Symbols:                []string{"RELIANCE"},
			Multiplier:             10,
			RefreshIntervalSeconds: 60,
			LookbackDays:           2,
		},
		Storage: models.MStorageConfig{DBType: "none"},
	}}

	log := logger.NewLogger("ERROR", "test")
	scanner := screener.NewEngine(cfg.MConfig, &fakeSource{}, &fakeTokens{}, log)
	srv := NewWebServer(cfg, cfgPath, scanner, storage.NewNoopStore(), &fakeTokens{}, log)
	return srv, cfgPath
}

func doRequest(srv *WebServer, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

// -----------------------------------------------------------------------------

func TestGetIndex(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(srv, "GET", "/", nil)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Imbalance Screener")
}

// -----------------------------------------------------------------------------

func TestGetSettings(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(srv, "GET", "/api/settings", nil)
	require.Equal(t, 200, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10.0, resp["multiplier"])
	assert.Equal(t, 60.0, resp["refresh_interval_seconds"])
	assert.Equal(t, 3.0, resp["multiplier_min"])
	assert.Equal(t, 30.0, resp["multiplier_max"])
}

// -----------------------------------------------------------------------------

func TestPostSettings_ParsesSymbolInput(t *testing.T) {
	srv, _ := newTestServer(t)

	body := []byte(`{"symbols_input":"reliance, tcs ,  hdfcbank","multiplier":12,"refresh_interval_seconds":30}`)
	w := doRequest(srv, "POST", "/api/settings", body)
	require.Equal(t, 200, w.Code)

	settings := srv.Scanner.Settings()
	assert.Equal(t, []string{"RELIANCE", "TCS", "HDFCBANK"}, settings.Symbols)
	assert.Equal(t, 12.0, settings.Multiplier)
	assert.Equal(t, 30, settings.RefreshIntervalSeconds)
}

// -----------------------------------------------------------------------------

func TestPostSettings_RejectsInvalid(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"multiplier out of range", `{"symbols":["TCS"],"multiplier":50,"refresh_interval_seconds":60}`},
		{"interval below floor", `{"symbols":["TCS"],"multiplier":10,"refresh_interval_seconds":5}`},
		{"no symbols", `{"symbols_input":" , ,","multiplier":10,"refresh_interval_seconds":60}`},
		{"not json", `plain text`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(srv, "POST", "/api/settings", []byte(tt.body))
			assert.Equal(t, 400, w.Code)
		})
	}

	// Settings unchanged after rejections.
	assert.Equal(t, []string{"RELIANCE"}, srv.Scanner.Settings().Symbols)
}

// -----------------------------------------------------------------------------

func TestGetResults_InitialState(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(srv, "GET", "/api/results", nil)
	require.Equal(t, 200, w.Code)

	var snap models.MScanSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "INITIAL", snap.Type)
	assert.Empty(t, snap.Results)
}

// -----------------------------------------------------------------------------

func TestGetHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(srv, "GET", "/api/health", nil)
	require.Equal(t, 200, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["degraded"])
}

// -----------------------------------------------------------------------------

func TestGetHistory_EmptyStore(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(srv, "GET", "/api/history?limit=5", nil)
	require.Equal(t, 200, w.Code)

	var resp struct {
		Results []models.MImbalanceResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
}

// -----------------------------------------------------------------------------

func TestGetHealth_DuringClientChurn(t *testing.T) {
	srv, _ := newTestServer(t)
	go srv.handleWebsockets()
	t.Cleanup(func() { srv.Stop() })

	churned := make(chan struct{})
	go func() {
		defer close(churned)
		for i := 0; i < 200; i++ {
			client := &Client{hub: srv, send: make(chan *models.MScanSnapshot, 4)}
			srv.register <- client
			srv.unregister <- client
		}
	}()

	// Hammer the health endpoint while the hub mutates the client map.
	for i := 0; i < 100; i++ {
		w := doRequest(srv, "GET", "/api/health", nil)
		require.Equal(t, 200, w.Code)
	}
	<-churned

	w := doRequest(srv, "GET", "/api/health", nil)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp["connections"])
}

// -----------------------------------------------------------------------------

func TestGetTicks(t *testing.T) {
	srv, _ := newTestServer(t)
	go srv.handleWebsockets()
	t.Cleanup(func() { srv.Stop() })

	srv.Broadcast(&models.MScanSnapshot{Type: "UPDATE", Timestamp: 1})
	srv.Broadcast(&models.MScanSnapshot{Type: "UPDATE", Timestamp: 2})

	require.Eventually(t, func() bool {
		return len(srv.RecentTicks(10)) == 2
	}, time.Second, 10*time.Millisecond)

	w := doRequest(srv, "GET", "/api/ticks?limit=1", nil)
	require.Equal(t, 200, w.Code)

	var resp struct {
		Ticks []models.MScanSnapshot `json:"ticks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ticks, 1)
	assert.Equal(t, int64(2), resp.Ticks[0].Timestamp)
}

// -----------------------------------------------------------------------------

func TestGetTicks_EmptyRing(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(srv, "GET", "/api/ticks", nil)
	require.Equal(t, 200, w.Code)

	var resp struct {
		Ticks []models.MScanSnapshot `json:"ticks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Ticks)
}

// -----------------------------------------------------------------------------

func TestStop_LateDisconnectAndBroadcastAreSafe(t *testing.T) {
	srv, _ := newTestServer(t)
	go srv.handleWebsockets()

	client := &Client{hub: srv, send: make(chan *models.MScanSnapshot, 4)}
	srv.register <- client

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop()) // idempotent

	done := make(chan struct{})
	go func() {
		srv.dropClient(client)
		srv.Broadcast(&models.MScanSnapshot{Type: "UPDATE"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnect or broadcast blocked after shutdown")
	}
}
