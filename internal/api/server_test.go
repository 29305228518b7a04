package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Port: "0",
		Env:  "development",
		API: config.APIConfig{
			ReadTimeout:     2 * time.Second,
			WriteTimeout:    3 * time.Second,
			IdleTimeout:     4 * time.Second,
			ShutdownTimeout: time.Second,
		},
	}
}

func localURL(t *testing.T, srv *Server) string {
	t.Helper()
	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	return "http://127.0.0.1:" + port
}

func TestNew_UsesConfiguredTimeouts(t *testing.T) {
	srv := New(testConfig(), logger.Nop(), http.NotFoundHandler())

	assert.Equal(t, ":0", srv.httpServer.Addr)
	assert.Equal(t, 2*time.Second, srv.httpServer.ReadTimeout)
	assert.Equal(t, 3*time.Second, srv.httpServer.WriteTimeout)
	assert.Equal(t, 4*time.Second, srv.httpServer.IdleTimeout)
}

func TestServer_RunUntilCancelled(t *testing.T) {
	srv := New(testConfig(), logger.Nop(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	require.NoError(t, srv.Listen())

	var order []string
	srv.OnShutdown(func() { order = append(order, "hub") })
	srv.OnShutdown(func() { order = append(order, "second") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := localURL(t, srv)
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []string{"hub", "second"}, order)

	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestServer_ListenError(t *testing.T) {
	first := New(testConfig(), logger.Nop(), http.NotFoundHandler())
	require.NoError(t, first.Listen())
	t.Cleanup(func() { first.listener.Close() })

	cfg := testConfig()
	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	cfg.Port = port

	second := New(cfg, logger.Nop(), http.NotFoundHandler())
	assert.Error(t, second.Run(context.Background()))
}
