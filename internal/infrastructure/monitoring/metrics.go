package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uicapture"

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// tests and multiple pipelines in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	// Capture metrics
	Frames           *prometheus.CounterVec
	ExtractionErrors prometheus.Counter
	Captures         *prometheus.CounterVec
	Saves            *prometheus.CounterVec
	SaveBytes        prometheus.Histogram

	// Upload metrics
	UploadAttempts *prometheus.CounterVec
	UploadPasses   *prometheus.CounterVec
	PassDuration   prometheus.Histogram
	FilesUploaded  prometheus.Counter
	FilesDeleted   prometheus.Counter
	FilesPruned    prometheus.Counter
	PendingFiles   prometheus.Gauge
	APIOnline      prometheus.Gauge
	APILastOnline  prometheus.Gauge

	// Admin API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON status API
type Snapshot struct {
	Frames        int64     `json:"frames" yaml:"frames"`
	Saves         int64     `json:"saves" yaml:"saves"`
	SaveFailures  int64     `json:"saveFailures" yaml:"saveFailures"`
	FilesUploaded int64     `json:"filesUploaded" yaml:"filesUploaded"`
	LastUpload    time.Time `json:"lastUpload" yaml:"lastUpload"`
	LastOutcome   string    `json:"lastOutcome" yaml:"lastOutcome"`
	Uptime        float64   `json:"uptimeSeconds" yaml:"uptimeSeconds"`
}

// NewMetrics creates a metrics collector with a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		Frames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Frames delivered by the host, by event kind",
			},
			[]string{"kind"},
		),
		ExtractionErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_errors_total",
				Help:      "Frames that produced no record because the tree could not be read",
			},
		),
		Captures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "captures_total",
				Help:      "Save requests by trigger",
			},
			[]string{"trigger"},
		),
		Saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Save outcomes (saved, empty, failed)",
			},
			[]string{"result"},
		),
		SaveBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "save_bytes",
				Help:      "Size of stored event files",
				Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
			},
		),

		UploadAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_attempts_total",
				Help:      "Upload attempts by outcome (success, server_error, client_error, transport_error)",
			},
			[]string{"outcome"},
		),
		UploadPasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_passes_total",
				Help:      "Upload passes by result",
			},
			[]string{"result"},
		),
		PassDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_pass_duration_seconds",
				Help:      "Upload pass duration in seconds, retry waits included",
				Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
			},
		),
		FilesUploaded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_uploaded_total",
				Help:      "Event files accepted by the collector",
			},
		),
		FilesDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_deleted_total",
				Help:      "Event files deleted after upload",
			},
		),
		FilesPruned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_pruned_total",
				Help:      "Stale or empty event files removed by retention",
			},
		),
		PendingFiles: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_files",
				Help:      "Eligible event files at the start of the last pass",
			},
		),
		APIOnline: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collector_online",
				Help:      "1 if the collector accepted the most recent batch, 0 after a failed pass",
			},
		),
		APILastOnline: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collector_last_online_timestamp_seconds",
				Help:      "Unix time of the last accepted batch",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admin_requests_total",
				Help:      "Admin API requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "admin_request_duration_seconds",
				Help:      "Admin API request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordFrame records a frame delivered by the host
func (m *Metrics) RecordFrame(kind string, ok bool) {
	m.Frames.WithLabelValues(kind).Inc()
	if !ok {
		m.ExtractionErrors.Inc()
	}

	m.mu.Lock()
	m.snapshot.Frames++
	m.mu.Unlock()
}

// RecordCapture records a save request from trigger
func (m *Metrics) RecordCapture(trigger string) {
	m.Captures.WithLabelValues(trigger).Inc()
}

// RecordSave records a save outcome; size is ignored unless result is "saved"
func (m *Metrics) RecordSave(result string, size int64) {
	m.Saves.WithLabelValues(result).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	switch result {
	case "saved":
		m.SaveBytes.Observe(float64(size))
		m.snapshot.Saves++
	case "failed":
		m.snapshot.SaveFailures++
	}
}

// RecordUploadAttempt records one collector call
func (m *Metrics) RecordUploadAttempt(outcome string) {
	m.UploadAttempts.WithLabelValues(outcome).Inc()
}

// RecordPass records a finished upload pass
func (m *Metrics) RecordPass(result string, duration time.Duration, uploaded, deleted int) {
	m.UploadPasses.WithLabelValues(result).Inc()
	m.PassDuration.Observe(duration.Seconds())
	m.FilesUploaded.Add(float64(uploaded))
	m.FilesDeleted.Add(float64(deleted))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.LastOutcome = result
	if uploaded > 0 {
		m.snapshot.FilesUploaded += int64(uploaded)
		m.snapshot.LastUpload = time.Now()
	}
}

// RecordPruned records files removed by retention
func (m *Metrics) RecordPruned(n int) {
	m.FilesPruned.Add(float64(n))
}

// SetPending sets the eligible file count
func (m *Metrics) SetPending(n int) {
	m.PendingFiles.Set(float64(n))
}

// SetAPIStatus records the collector's reachability
func (m *Metrics) SetAPIStatus(online bool, lastOnline time.Time) {
	if online {
		m.APIOnline.Set(1)
	} else {
		m.APIOnline.Set(0)
	}
	if !lastOnline.IsZero() {
		m.APILastOnline.Set(float64(lastOnline.Unix()))
	}
}

// RecordHTTPRequest records an admin API request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Snapshot returns current values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.Uptime = time.Since(m.startTime).Seconds()
	return s
}
