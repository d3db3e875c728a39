package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/internal/logging"
)

func TestServeHandler(t *testing.T) {
	cfg := config.Default()
	b, err := OpenBackend(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	handler, err := NewServeHandler(cfg, b, logging.NewNop())
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	body := strings.NewReader(`{"id":"s1","href":"` + cfg.BaseURL + `i/machines"}`)
	resp, err := http.Post(ts.URL+"/sessions", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/sessions/s1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "s1", view["id"])

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestRunServer_Shutdown(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, cfg, logging.NewNop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
