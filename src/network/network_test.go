package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"imbalance-screener/src/logger"
	"imbalance-screener/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestManager(retries int) *HTTPManager {
	cfg := &models.MConfig{
		Network: models.MNetworkConfig{
			RequestTimeout: 5,
			MaxRetries:     retries,
			UserAgent:      "screener-test",
		},
	}
	return NewHTTPManager(cfg, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestGet_ParamsAndHeaders(t *testing.T) {
	var gotQuery, gotAuth, gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("symbol")
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"s":"ok"}`))
	}))
	defer srv.Close()

	nm := newTestManager(0)
	body, err := nm.Get(srv.URL, map[string]string{"symbol": "NSE:TCS-EQ"}, map[string]string{"Authorization": "app:token"})
	require.NoError(t, err)

	assert.Equal(t, `{"s":"ok"}`, string(body))
	assert.Equal(t, "NSE:TCS-EQ", gotQuery)
	assert.Equal(t, "app:token", gotAuth)
	assert.Equal(t, "screener-test", gotUA)
}

// -----------------------------------------------------------------------------

func TestGet_RetriesOnServerError(t *testing.T) {
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	nm := newTestManager(1)
	body, err := nm.Get(srv.URL, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

// -----------------------------------------------------------------------------

func TestGet_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	nm := newTestManager(0)
	_, err := nm.Get(srv.URL, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
}

// -----------------------------------------------------------------------------

func TestPostJSON_SendsBody(t *testing.T) {
	var gotContentType string
	var gotPayload map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"s":"ok"}`))
	}))
	defer srv.Close()

	nm := newTestManager(0)
	body, err := nm.PostJSON(srv.URL, map[string]string{"grant_type": "refresh_token"}, nil)
	require.NoError(t, err)

	assert.Equal(t, `{"s":"ok"}`, string(body))
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "refresh_token", gotPayload["grant_type"])
}
