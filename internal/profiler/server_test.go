package profiler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/chime/internal/metrics"
)

func startServer(t *testing.T, m *metrics.Metrics) *Server {
	t.Helper()

	var server *Server
	if m != nil {
		server = New("127.0.0.1:0", m.Registry)
	} else {
		server = New("127.0.0.1:0", nil)
	}
	require.NoError(t, server.Start(context.Background()), "Start() error")

	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})
	return server
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := New("127.0.0.1:0", nil)
	require.NoError(t, server.Start(context.Background()), "Start() error")
	assert.NotEmpty(t, server.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(shutdownCtx), "Shutdown() error")
}

func TestServer_AddrBeforeStart(t *testing.T) {
	assert.Empty(t, New(":0", nil).Addr())
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := startServer(t, nil)
	baseURL := "http://" + server.Addr()

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "index", endpoint: "/debug/pprof/"},
		{name: "cmdline", endpoint: "/debug/pprof/cmdline"},
		{name: "symbol", endpoint: "/debug/pprof/symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(baseURL + tt.endpoint)
			require.NoError(t, err, "GET %s error", tt.endpoint)
			defer func() {
				_ = resp.Body.Close()
			}()

			assert.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", tt.endpoint)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	m := metrics.New()
	m.Push(metrics.OutcomeDisplayed)

	server := startServer(t, m)

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `chime_pushes_total{outcome="displayed"} 1`)
}

func TestServer_MetricsAbsentWithoutGatherer(t *testing.T) {
	server := startServer(t, nil)

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
