package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/uicapture/internal/domain/extract"
	"github.com/GriffinCanCode/uicapture/internal/domain/schedule"
	"github.com/GriffinCanCode/uicapture/internal/domain/snapshot"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/shared/types"
	"github.com/GriffinCanCode/uicapture/internal/store"
)

// Store persists capture records
type Store interface {
	Save(rec *types.CaptureRecord) (store.Entry, error)
}

// Uploader is the upload coordinator's lifecycle
type Uploader interface {
	Run(ctx context.Context) error
	Start(ctx context.Context) bool
}

// Config selects which triggers run
type Config struct {
	Schedule        schedule.Settings
	Cadence         time.Duration
	AdaptiveEnabled bool
	CadenceEnabled  bool
	Display         schedule.Display
}

// DefaultConfig runs every trigger with production timings
func DefaultConfig() Config {
	return Config{
		Schedule:        schedule.DefaultSettings(),
		Cadence:         time.Second,
		AdaptiveEnabled: true,
		CadenceEnabled:  true,
		Display:         schedule.AlwaysOn,
	}
}

// Status is a point-in-time view of the pipeline
type Status struct {
	Running     bool                 `json:"running" yaml:"running"`
	Pending     bool                 `json:"pending" yaml:"pending"`
	Fingerprint int32                `json:"fingerprint" yaml:"fingerprint"`
	LastSaved   string               `json:"lastSaved,omitempty" yaml:"lastSaved,omitempty"`
	Latest      *types.CaptureRecord `json:"latest,omitempty" yaml:"latest,omitempty"`
}

// Manager orchestrates capture, persistence and upload
type Manager struct {
	cfg       Config
	extractor *extract.Extractor
	slot      *snapshot.Slot
	store     Store
	uploader  Uploader
	scheduler *schedule.Scheduler
	cadence   *schedule.Cadence
	metrics   *monitoring.Metrics
	logger    *zap.Logger

	runCtx    atomic.Pointer[context.Context]
	lastSaved atomic.Pointer[string]
}

// NewManager creates a manager. uploader may be nil to disable uploads.
func NewManager(cfg Config, st Store, uploader Uploader, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Display == nil {
		cfg.Display = schedule.AlwaysOn
	}

	m := &Manager{
		cfg:       cfg,
		extractor: extract.New(logger),
		slot:      snapshot.New(),
		store:     st,
		uploader:  uploader,
		logger:    logger.Named("monitor"),
	}
	m.scheduler = schedule.New(cfg.Schedule, m.slot, m, logger)
	m.cadence = schedule.NewCadence(cfg.Cadence, cfg.Display, m, logger)
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Slot exposes the latest-snapshot slot
func (m *Manager) Slot() *snapshot.Slot {
	return m.slot
}

// OnFrame fingerprints and extracts a new frame into the slot. Important
// events additionally request an immediate capture. The root stays owned by
// the caller.
func (m *Manager) OnFrame(root extract.Node, kind types.EventKind) {
	rec, fp, err := m.capture(root)
	if m.metrics != nil {
		m.metrics.RecordFrame(string(kind), err == nil)
	}
	if err != nil {
		m.logger.Warn("Frame produced no record", zap.String("event", string(kind)), zap.Error(err))
		return
	}

	m.slot.Put(rec, fp)

	if kind.Important() {
		m.requestCapture()
	}
}

func (m *Manager) capture(root extract.Node) (*types.CaptureRecord, int32, error) {
	if root == nil {
		return nil, 0, fmt.Errorf("nil root")
	}
	fp, err := extract.Fingerprint(root)
	if err != nil {
		return nil, 0, fmt.Errorf("fingerprint: %w", err)
	}
	rec, err := m.extractor.Extract(root)
	if err != nil {
		return nil, 0, err
	}
	return rec, fp, nil
}

// requestCapture routes an important event to the scheduler so it can reset
// its staleness clock, or saves directly when the scheduler is not running.
func (m *Manager) requestCapture() {
	if m.cfg.AdaptiveEnabled {
		if ctx := m.runCtx.Load(); ctx != nil && (*ctx).Err() == nil {
			m.scheduler.CaptureNow()
			return
		}
	}
	m.SaveLatest(m.context(), schedule.TriggerEvent)
}

// SaveLatest persists whatever the slot holds. An empty slot is a no-op. A
// failed save is logged and the record is dropped.
func (m *Manager) SaveLatest(ctx context.Context, trigger schedule.Trigger) {
	if m.metrics != nil {
		m.metrics.RecordCapture(string(trigger))
	}

	rec := m.slot.Take()
	if rec == nil {
		if m.metrics != nil {
			m.metrics.RecordSave("empty", 0)
		}
		return
	}

	entry, err := m.store.Save(rec)
	if err != nil {
		m.logger.Error("Failed to save capture",
			zap.String("trigger", string(trigger)),
			zap.String("package", rec.PackageName),
			zap.Error(err),
		)
		if m.metrics != nil {
			m.metrics.RecordSave("failed", 0)
		}
		return
	}

	name := entry.Name
	m.lastSaved.Store(&name)
	if m.metrics != nil {
		m.metrics.RecordSave("saved", entry.Size)
	}
	m.logger.Debug("Capture saved",
		zap.String("trigger", string(trigger)),
		zap.String("name", entry.Name),
		zap.Int("elements", len(rec.TextFocusedData.TextData)),
	)

	m.kickUploader(ctx)
}

// CaptureNow saves the latest snapshot immediately and kicks off the uploader
func (m *Manager) CaptureNow(ctx context.Context) {
	m.SaveLatest(ctx, schedule.TriggerEvent)
	m.kickUploader(ctx)
}

func (m *Manager) kickUploader(ctx context.Context) {
	if m.uploader == nil {
		return
	}
	// The loop must outlive request-scoped contexts.
	if run := m.runCtx.Load(); run != nil {
		ctx = *run
	}
	if ctx.Err() != nil {
		return
	}
	m.uploader.Start(ctx)
}

func (m *Manager) context() context.Context {
	if ctx := m.runCtx.Load(); ctx != nil {
		return *ctx
	}
	return context.Background()
}

// Status reports the pipeline state
func (m *Manager) Status() Status {
	s := Status{
		Fingerprint: m.slot.Fingerprint(),
		Latest:      m.slot.Peek(),
	}
	s.Pending = s.Latest != nil
	if ctx := m.runCtx.Load(); ctx != nil && (*ctx).Err() == nil {
		s.Running = true
	}
	if name := m.lastSaved.Load(); name != nil {
		s.LastSaved = *name
	}
	return s
}

// Run starts the enabled triggers and the upload loop and blocks until ctx
// is cancelled or one of them fails.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	m.runCtx.Store(&gctx)

	if m.cfg.AdaptiveEnabled {
		g.Go(func() error { return m.scheduler.Run(gctx) })
	}
	if m.cfg.CadenceEnabled {
		g.Go(func() error { return m.cadence.Run(gctx) })
	}
	if m.uploader != nil {
		g.Go(func() error { return m.uploader.Run(gctx) })
	}

	m.logger.Info("Monitor started",
		zap.Bool("adaptive", m.cfg.AdaptiveEnabled),
		zap.Bool("cadence", m.cfg.CadenceEnabled),
		zap.Bool("upload", m.uploader != nil),
	)

	err := g.Wait()
	m.logger.Info("Monitor stopped")
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}
