package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saedabdu/tickerproxy/internal/config"
	"github.com/saedabdu/tickerproxy/internal/logger"
)

func TestServer_Serve(t *testing.T) {
	t.Run("Should serve until the context is cancelled", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		cfg := config.Default().Server
		srv := New(cfg, newTestRouter(), logger.NewLogger(logger.TestConfig()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln)
		}()

		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("Should fail when the port is taken", func(t *testing.T) {
		ln, err := net.Listen("tcp", ":0")
		require.NoError(t, err)
		defer ln.Close()

		_, port, err := net.SplitHostPort(ln.Addr().String())
		require.NoError(t, err)

		cfg := config.Default().Server
		cfg.Port = port
		srv := New(cfg, http.NotFoundHandler(), logger.NewLogger(logger.TestConfig()))

		err = srv.Run(context.Background())
		assert.ErrorContains(t, err, "failed to listen")
	})
}
