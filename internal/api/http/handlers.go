package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/domain/monitor"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/store"
	"github.com/GriffinCanCode/uicapture/internal/upload"
)

// Version is reported by /health
var Version = "dev"

// Pipeline is the capture side of the admin API
type Pipeline interface {
	Status() monitor.Status
	CaptureNow(ctx context.Context)
}

// Uploads is the upload side of the admin API
type Uploads interface {
	LastPass() *upload.Result
	Running() bool
	Device() *upload.Device
}

// Events lists pending event files
type Events interface {
	List() ([]store.Entry, error)
}

// Handlers contains the admin handlers
type Handlers struct {
	pipeline Pipeline
	uploads  Uploads
	events   Events
	metrics  *monitoring.Metrics
	api      *upload.APIStatus
	logger   *zap.Logger
}

// NewHandlers creates a handler set. uploads and metrics may be nil.
func NewHandlers(pipeline Pipeline, uploads Uploads, events Events, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		pipeline: pipeline,
		uploads:  uploads,
		events:   events,
		metrics:  metrics,
		logger:   logger.Named("admin"),
	}
}

// WithAPIStatus reports collector reachability in /status
func (h *Handlers) WithAPIStatus(api *upload.APIStatus) *Handlers {
	h.api = api
	return h
}

// Register mounts the routes on r
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)
	r.GET("/events", h.ListEvents)
	r.POST("/capture", h.Capture)
	r.PUT("/device", h.SetDevice)
	r.GET("/metrics", h.Metrics)
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "uicapture",
		"version": Version,
	})
}

// Status reports the pipeline state
func (h *Handlers) Status(c *gin.Context) {
	resp := gin.H{"capture": h.pipeline.Status()}

	if h.uploads != nil {
		up := gin.H{
			"running":  h.uploads.Running(),
			"lastPass": h.uploads.LastPass(),
		}
		name, err := h.uploads.Device().Name()
		if err != nil {
			h.logger.Warn("Device name unavailable", zap.Error(err))
		}
		if name != "" {
			up["device"] = name
		}
		if h.api != nil {
			up["api"] = h.api.State()
		}
		resp["upload"] = up
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}

	c.JSON(http.StatusOK, resp)
}

// ListEvents lists event files awaiting upload
func (h *Handlers) ListEvents(c *gin.Context) {
	entries, err := h.events.List()
	if err != nil {
		h.logger.Error("Failed to list events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	c.JSON(http.StatusOK, gin.H{
		"events": entries,
		"count":  len(entries),
		"bytes":  total,
	})
}

// Capture saves the latest snapshot immediately and starts the uploader
func (h *Handlers) Capture(c *gin.Context) {
	// The uploader it starts must outlive the request.
	h.pipeline.CaptureNow(context.WithoutCancel(c.Request.Context()))

	status := h.pipeline.Status()
	c.JSON(http.StatusAccepted, gin.H{
		"lastSaved": status.LastSaved,
		"pending":   status.Pending,
	})
}

// SetDeviceRequest renames the device
type SetDeviceRequest struct {
	Name string `json:"name" binding:"required"`
}

// SetDevice replaces the persisted device name
func (h *Handlers) SetDevice(c *gin.Context) {
	if h.uploads == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "uploads disabled"})
		return
	}

	var req SetDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device name cannot be empty"})
		return
	}

	if err := h.uploads.Device().Set(req.Name); err != nil {
		h.logger.Error("Failed to set device name", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name, _ := h.uploads.Device().Name()
	h.logger.Info("Device renamed", zap.String("device", name))
	c.JSON(http.StatusOK, gin.H{"device": name})
}

// Metrics serves the Prometheus exposition
func (h *Handlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
