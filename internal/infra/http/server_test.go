package http

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Env: "development"},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: time.Second, MaxBodySize: 1 << 10},
		RateLimit: config.RateLimitConfig{
			Enabled: true, RequestsPerSec: 100, Burst: 100, CleanupInterval: time.Minute,
		},
	}
}

func TestServer_MiddlewareStack(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := NewServer(testConfig(), logger.NewNop())
	srv.Router().GET("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	srv.Router().GET("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	defer func() { require.NoError(t, srv.Shutdown(context.Background())) }()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := NewServer(testConfig(), logger.NewNop())
	srv.Router().GET("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	stopped := false
	srv.OnShutdown(func() { stopped = true })
	srv.OnShutdown(nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-errCh)
	assert.True(t, stopped)
}
