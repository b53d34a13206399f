package profiler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartAndShutdown(t *testing.T) {
	server := New(0)

	require.NoError(t, server.Start(context.Background()), "Start() error")
	assert.NotEmpty(t, server.Addr())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(shutdownCtx), "Shutdown() error")
}

func TestServer_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := New(0)
	require.NoError(t, server.Start(ctx))

	addr := "http://" + server.Addr() + "/debug/pprof/"
	resp, err := http.Get(addr)
	require.NoError(t, err)
	_ = resp.Body.Close()

	cancel()

	assert.Eventually(t, func() bool {
		resp, err := http.Get(addr)
		if err != nil {
			return true
		}
		_ = resp.Body.Close()
		return false
	}, 5*time.Second, 50*time.Millisecond)
}

func TestServer_PprofEndpoints(t *testing.T) {
	server := New(0)

	require.NoError(t, server.Start(context.Background()), "Start() error")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	baseURL := "http://" + server.Addr()

	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "index", endpoint: "/debug/pprof/"},
		{name: "cmdline", endpoint: "/debug/pprof/cmdline"},
		{name: "symbol", endpoint: "/debug/pprof/symbol"},
		{name: "heap", endpoint: "/debug/pprof/heap"},
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
