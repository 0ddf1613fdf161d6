package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/uicapture/internal/domain/monitor"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/providers/collector"
	"github.com/GriffinCanCode/uicapture/internal/shared/types"
	"github.com/GriffinCanCode/uicapture/internal/store"
	"github.com/GriffinCanCode/uicapture/internal/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePipeline struct {
	status   monitor.Status
	captures int
}

func (f *fakePipeline) Status() monitor.Status { return f.status }

func (f *fakePipeline) CaptureNow(context.Context) {
	f.captures++
	f.status.LastSaved = "event_com_example_10:00:00_01-01-2025.pb"
}

type fakeUploads struct {
	device *upload.Device
	last   *upload.Result
}

func (f *fakeUploads) LastPass() *upload.Result { return f.last }
func (f *fakeUploads) Running() bool            { return true }
func (f *fakeUploads) Device() *upload.Device   { return f.device }

type fixture struct {
	router   *gin.Engine
	pipeline *fakePipeline
	uploads  *fakeUploads
	device   string
	store    *store.Store
	metrics  *monitoring.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.New(store.Options{Dir: t.TempDir()})
	require.NoError(t, err)

	f := &fixture{
		pipeline: &fakePipeline{},
		store:    st,
		metrics:  monitoring.NewMetrics(),
	}
	f.device = filepath.Join(t.TempDir(), "device.toml")
	f.uploads = &fakeUploads{
		device: upload.NewDevice(f.device, "Pixel Test"),
		last:   &upload.Result{Outcome: upload.OutcomeUploaded, Attempts: 1},
	}

	f.router = gin.New()
	f.router.Use(monitoring.Middleware(f.metrics))
	NewHandlers(f.pipeline, f.uploads, st, f.metrics, nil).Register(f.router)
	return f
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func (f *fixture) doJSON(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "uicapture", body["service"])
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.pipeline.status = monitor.Status{Running: true, Fingerprint: 42}

	w := f.do(http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	capture := body["capture"].(map[string]any)
	assert.Equal(t, true, capture["running"])
	assert.Equal(t, float64(42), capture["fingerprint"])

	up := body["upload"].(map[string]any)
	assert.Equal(t, "Pixel Test", up["device"])
	assert.Equal(t, "uploaded", up["lastPass"].(map[string]any)["outcome"])

	assert.Contains(t, body, "metrics")
}

func TestListEvents(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/events")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	_, err := f.store.Save(&types.CaptureRecord{Timestamp: 1700000000000, PackageName: "com.example"})
	require.NoError(t, err)

	w = f.do(http.MethodGet, "/events")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	events := body["events"].([]any)
	name := events[0].(map[string]any)["name"].(string)
	assert.True(t, strings.HasPrefix(name, "event_com_example_"))
}

func TestCapture(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/capture")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, f.pipeline.captures)
	assert.Contains(t, decode(t, w)["lastSaved"], "event_com_example")
}

func TestStatusReportsCollectorOnlineAfterPass(t *testing.T) {
	collectorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(collectorSrv.Close)

	st, err := store.New(store.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	entry, err := st.Save(&types.CaptureRecord{Timestamp: 1700000000000, PackageName: "com.example"})
	require.NoError(t, err)
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(entry.Path, old, old))

	metrics := monitoring.NewMetrics()
	api := upload.NewAPIStatus(metrics)
	opts := upload.DefaultOptions()
	opts.DeviceName = "Pixel Test"
	opts.OnOnline = api.MarkOnline
	opts.OnOffline = api.MarkOffline
	coord := upload.NewCoordinator(st, collector.NewClient(collector.Options{Endpoint: collectorSrv.URL, Timeout: 5 * time.Second}), opts)

	r := gin.New()
	NewHandlers(&fakePipeline{}, coord, st, metrics, nil).WithAPIStatus(api).Register(r)
	status := func() map[string]any {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
		require.Equal(t, http.StatusOK, w.Code)
		return decode(t, w)["upload"].(map[string]any)["api"].(map[string]any)
	}

	before := status()
	assert.Equal(t, false, before["online"])
	assert.NotContains(t, before, "lastOnline")

	res, err := coord.Pass(context.Background())
	require.NoError(t, err)
	require.Equal(t, upload.OutcomeUploaded, res.Outcome)

	after := status()
	assert.Equal(t, true, after["online"])
	assert.NotEmpty(t, after["lastOnline"])
}

func TestSetDevice(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(http.MethodPut, "/device", `{"name":"  Front desk "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Front desk", decode(t, w)["device"])

	up := decode(t, f.do(http.MethodGet, "/status"))["upload"].(map[string]any)
	assert.Equal(t, "Front desk", up["device"])

	again := upload.NewDevice(f.device, "")
	name, err := again.Name()
	require.NoError(t, err)
	assert.Equal(t, "Front desk", name)
}

func TestSetDeviceRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{"name":"   "}`, `{}`, `not json`} {
		w := f.doJSON(http.MethodPut, "/device", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	up := decode(t, f.do(http.MethodGet, "/status"))["upload"].(map[string]any)
	assert.Equal(t, "Pixel Test", up["device"])
}

func TestSetDeviceWithoutUploads(t *testing.T) {
	st, err := store.New(store.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	r := gin.New()
	NewHandlers(&fakePipeline{}, nil, st, nil, nil).Register(r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/device", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/health")

	w := f.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/health")
}

func TestMetricsDisabled(t *testing.T) {
	st, err := store.New(store.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	r := gin.New()
	NewHandlers(&fakePipeline{}, nil, st, nil, nil).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "upload")
}
