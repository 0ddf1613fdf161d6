package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/uicapture/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/uicapture/internal/providers/collector"
	"github.com/GriffinCanCode/uicapture/internal/shared/id"
	"github.com/GriffinCanCode/uicapture/internal/shared/paths"
	"github.com/GriffinCanCode/uicapture/internal/store"
)

// EventStore is the subset of the store a pass needs
type EventStore interface {
	Root() string
	List() ([]store.Entry, error)
	Stat(name string) (store.Entry, error)
	ReadFile(name string) ([]byte, error)
	Delete(name string) error
	Prune(ctx context.Context, maxAge time.Duration) (int, error)
}

// Sender posts one batch to the collector
type Sender interface {
	Send(ctx context.Context, batch collector.Batch) (*collector.Response, error)
}

// Outcome summarises how a pass ended
type Outcome string

const (
	OutcomeIdle      Outcome = "idle"      // nothing eligible, no network call
	OutcomeUploaded  Outcome = "uploaded"  // 2xx received
	OutcomeVanished  Outcome = "vanished"  // every candidate disappeared before sending
	OutcomeRejected  Outcome = "rejected"  // terminal non-2xx, non-5xx reply
	OutcomeExhausted Outcome = "exhausted" // attempt budget used up
	OutcomeCancelled Outcome = "cancelled" // context cancelled during a retry wait
	OutcomeDeferred  Outcome = "deferred"  // collector breaker open, nothing sent
)

// Result describes one pass
type Result struct {
	Outcome  Outcome  `json:"outcome" yaml:"outcome"`
	BatchID  string   `json:"batchId,omitempty" yaml:"batchId,omitempty"`
	Attempts int      `json:"attempts" yaml:"attempts"`
	Eligible int      `json:"eligible" yaml:"eligible"`
	Uploaded []string `json:"uploaded,omitempty" yaml:"uploaded,omitempty"`
	Deleted  int      `json:"deleted" yaml:"deleted"`
	Pruned   int      `json:"pruned" yaml:"pruned"`
	Status   int      `json:"status,omitempty" yaml:"status,omitempty"`
}

// Options configures a Coordinator
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Grace       time.Duration
	Retention   time.Duration // 0 disables pruning
	DeviceName  string        // overrides the derived name
	OnOnline    func()        // called after each successful upload
	OnOffline   func()        // called when a pass exhausts its attempts
	Metrics     *monitoring.Metrics
	Logger      *zap.Logger
}

// DefaultOptions returns production settings
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		RetryDelay:  30 * time.Second,
		Grace:       5 * time.Second,
		Retention:   72 * time.Hour,
	}
}

// Coordinator runs upload passes
type Coordinator struct {
	store  EventStore
	sender Sender
	device *Device
	opts   Options
	logger *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	passMu  sync.Mutex
	dedupMu sync.Mutex
	deleted map[string]struct{}

	running  atomic.Bool
	lastPass atomic.Pointer[Result]
}

// NewCoordinator creates a coordinator over st, sending through sender
func NewCoordinator(st EventStore, sender Sender, opts Options) *Coordinator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator{
		store:   st,
		sender:  sender,
		device:  NewDevice(paths.Layout{Root: st.Root()}.Device(), opts.DeviceName),
		opts:    opts,
		logger:  opts.Logger.Named("upload"),
		now:     time.Now,
		sleep:   sleepContext,
		deleted: make(map[string]struct{}),
	}
}

// Device returns the device name resolver
func (c *Coordinator) Device() *Device {
	return c.device
}

// LastPass returns the result of the most recent pass, nil before the first
func (c *Coordinator) LastPass() *Result {
	return c.lastPass.Load()
}

// Running reports whether the minute-aligned loop is active
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Start launches Run in the background unless it is already running
func (c *Coordinator) Start(ctx context.Context) bool {
	if c.running.Load() {
		return false
	}
	go func() {
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("Upload loop stopped", zap.Error(err))
		}
	}()
	return true
}

// Run performs one pass per minute boundary until ctx is cancelled.
// A second concurrent Run waits for cancellation without doing work.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		<-ctx.Done()
		return ctx.Err()
	}
	defer c.running.Store(false)

	c.logger.Info("Upload loop started")
	for {
		if err := c.sleep(ctx, untilNextMinute(c.now())); err != nil {
			c.logger.Info("Upload loop stopped")
			return err
		}
		if _, err := c.Pass(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("Upload pass failed", zap.Error(err))
		}
	}
}

// Pass uploads every eligible file in at most MaxAttempts requests.
// Only one pass runs at a time; overlapping callers wait.
func (c *Coordinator) Pass(ctx context.Context) (Result, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	timer := monitoring.NewTimer()
	res, err := c.pass(ctx)

	c.lastPass.Store(&res)
	if m := c.opts.Metrics; m != nil {
		m.RecordPass(string(res.Outcome), timer.Elapsed(), len(res.Uploaded), res.Deleted)
	}
	return res, err
}

func (c *Coordinator) pass(ctx context.Context) (Result, error) {
	var res Result

	if c.opts.Retention > 0 {
		n, err := c.store.Prune(ctx, c.opts.Retention)
		if err != nil {
			c.logger.Warn("Prune failed", zap.Error(err))
		}
		res.Pruned = n
		if n > 0 {
			c.logger.Info("Pruned event files", zap.Int("count", n))
			if m := c.opts.Metrics; m != nil {
				m.RecordPruned(n)
			}
		}
	}

	entries, err := c.store.List()
	if err != nil {
		return res, fmt.Errorf("upload: list: %w", err)
	}

	now := c.now()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if now.Sub(e.ModTime) > c.opts.Grace {
			names = append(names, e.Name)
		}
	}
	res.Eligible = len(names)
	if m := c.opts.Metrics; m != nil {
		m.SetPending(len(names))
	}

	if len(names) == 0 {
		res.Outcome = OutcomeIdle
		c.logger.Debug("No files to upload")
		return res, nil
	}

	c.resetDeleted()

	deviceName, err := c.device.Name()
	if err != nil {
		c.logger.Warn("Device name unavailable", zap.String("device", deviceName), zap.Error(err))
	}

	res.BatchID = id.NewBatchID().String()
	log := c.logger.With(zap.String("batch_id", res.BatchID))

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		res.Attempts = attempt

		parts := c.collect(names, log)
		if len(parts) == 0 {
			log.Info("All candidate files disappeared before upload")
			res.Outcome = OutcomeVanished
			return res, nil
		}

		log.Info("Uploading batch", zap.Int("attempt", attempt), zap.Int("files", len(parts)))
		resp, err := c.sender.Send(ctx, collector.Batch{ID: res.BatchID, DeviceName: deviceName, Files: parts})

		switch {
		case isCircuitOpen(err):
			// Files stay eligible; the next cycle tries again.
			c.recordAttempt("circuit_open")
			res.Attempts = attempt - 1
			res.Outcome = OutcomeDeferred
			log.Warn("Collector circuit open, deferring batch", zap.Error(err))
			return res, nil

		case err != nil:
			c.recordAttempt("transport_error")
			log.Warn("Upload attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		case resp.Success():
			c.recordAttempt("success")
			res.Status = resp.Status
			res.Outcome = OutcomeUploaded
			res.Uploaded = partNames(parts)
			res.Deleted = c.deleteFiles(res.Uploaded, log)
			log.Info("Batch uploaded",
				zap.Int("status", resp.Status),
				zap.Int("files", len(parts)),
				zap.Int("deleted", res.Deleted),
			)
			if c.opts.OnOnline != nil {
				c.opts.OnOnline()
			}
			return res, nil

		case resp.ServerError():
			c.recordAttempt("server_error")
			res.Status = resp.Status
			log.Warn("Collector server error", zap.Int("attempt", attempt), zap.Int("status", resp.Status))

		default:
			c.recordAttempt("client_error")
			res.Status = resp.Status
			res.Outcome = OutcomeRejected
			log.Error("Collector rejected batch", zap.Int("status", resp.Status), zap.String("body", resp.Body))
			return res, nil
		}

		if attempt < c.opts.MaxAttempts {
			if err := c.sleep(ctx, c.opts.RetryDelay); err != nil {
				res.Outcome = OutcomeCancelled
				return res, err
			}
		}
	}

	log.Warn("Upload attempts exhausted", zap.Int("attempts", res.Attempts))
	res.Outcome = OutcomeExhausted
	if c.opts.OnOffline != nil {
		c.opts.OnOffline()
	}
	return res, nil
}

// collect re-verifies candidates and reads their contents
func (c *Coordinator) collect(names []string, log *zap.Logger) []collector.Part {
	parts := make([]collector.Part, 0, len(names))
	for _, name := range names {
		if _, err := c.store.Stat(name); err != nil {
			if !store.IsNotExist(err) {
				log.Warn("Skipping file", zap.String("name", name), zap.Error(err))
			}
			continue
		}
		data, err := c.store.ReadFile(name)
		if err != nil {
			log.Warn("Skipping unreadable file", zap.String("name", name), zap.Error(err))
			continue
		}
		parts = append(parts, collector.Part{Name: name, Data: data})
	}
	return parts
}

func (c *Coordinator) resetDeleted() {
	c.dedupMu.Lock()
	defer c.dedupMu.Unlock()
	clear(c.deleted)
}

// deleteFiles removes uploaded files once per pass. Failures are warnings.
func (c *Coordinator) deleteFiles(names []string, log *zap.Logger) int {
	c.dedupMu.Lock()
	defer c.dedupMu.Unlock()

	deleted := 0
	for _, name := range names {
		if _, done := c.deleted[name]; done {
			continue
		}
		err := c.store.Delete(name)
		switch {
		case err == nil:
			c.deleted[name] = struct{}{}
			deleted++
		case store.IsNotExist(err):
			c.deleted[name] = struct{}{}
		default:
			log.Warn("Failed to delete uploaded file", zap.String("name", name), zap.Error(err))
		}
	}
	return deleted
}

func (c *Coordinator) recordAttempt(outcome string) {
	if m := c.opts.Metrics; m != nil {
		m.RecordUploadAttempt(outcome)
	}
}

func isCircuitOpen(err error) bool {
	return errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests)
}

func partNames(parts []collector.Part) []string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.Name
	}
	return names
}

func untilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
