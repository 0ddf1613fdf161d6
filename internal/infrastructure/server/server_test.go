package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminhttp "github.com/GriffinCanCode/uicapture/internal/api/http"
	"github.com/GriffinCanCode/uicapture/internal/domain/monitor"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/config"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, cfg config.AdminConfig) *Server {
	t.Helper()
	st, err := store.New(store.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	mgr := monitor.NewManager(monitor.DefaultConfig(), st, nil, nil)
	metrics := monitoring.NewMetrics()
	return New(cfg, true, adminhttp.NewHandlers(mgr, nil, st, metrics, nil), metrics, nil)
}

func TestServeAndShutdown(t *testing.T) {
	srv := newServer(t, config.Default().Admin)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestRateLimitApplied(t *testing.T) {
	cfg := config.Default().Admin
	cfg.RateLimit = 1
	cfg.Burst = 1
	srv := newServer(t, cfg)

	first := doGet(srv.Handler(), "/health")
	second := doGet(srv.Handler(), "/health")
	assert.Equal(t, http.StatusOK, first)
	assert.Equal(t, http.StatusTooManyRequests, second)
}

func TestRunRejectsBadAddr(t *testing.T) {
	cfg := config.Default().Admin
	cfg.Addr = "256.0.0.1:bad"
	srv := newServer(t, cfg)

	err := srv.Run(context.Background())
	assert.Error(t, err)
}

func doGet(h http.Handler, path string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}
