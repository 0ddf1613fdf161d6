package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Trigger names the path that requested a save
type Trigger string

const (
	TriggerChanged Trigger = "changed"
	TriggerStale   Trigger = "stale"
	TriggerEvent   Trigger = "event"
	TriggerCadence Trigger = "cadence"
)

// Saver persists whatever the latest-snapshot slot currently holds.
// Saving an empty slot must be a no-op.
type Saver interface {
	SaveLatest(ctx context.Context, trigger Trigger)
}

// FingerprintSource exposes the fingerprint of the most recent frame
type FingerprintSource interface {
	Fingerprint() int32
}

// Settings tunes the adaptive scheduler
type Settings struct {
	MinInterval  time.Duration // debounce between change-driven captures
	MaxInterval  time.Duration // forced capture after this much quiet time
	StaticAfter  time.Duration // content counts as static past this elapsed time
	StaticDelay  time.Duration // tick delay for static content
	DynamicDelay time.Duration // tick delay for changing content
}

// DefaultSettings returns the production timings
func DefaultSettings() Settings {
	return Settings{
		MinInterval:  1000 * time.Millisecond,
		MaxInterval:  5000 * time.Millisecond,
		StaticAfter:  3000 * time.Millisecond,
		StaticDelay:  2000 * time.Millisecond,
		DynamicDelay: 500 * time.Millisecond,
	}
}

// Scheduler is the adaptive capture loop.
// lastCapture and lastFingerprint are only touched by the Run goroutine.
type Scheduler struct {
	settings Settings
	source   FingerprintSource
	saver    Saver
	logger   *zap.Logger
	now      func() time.Time

	captureNow chan struct{}

	lastCapture     time.Time
	lastFingerprint int32
}

// New creates an adaptive scheduler
func New(settings Settings, source FingerprintSource, saver Saver, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		settings:   settings,
		source:     source,
		saver:      saver,
		logger:     logger.Named("scheduler"),
		now:        time.Now,
		captureNow: make(chan struct{}, 1),
	}
}

// Decide reports whether a tick with the given elapsed time and current
// fingerprint should capture. A changed fingerprint is remembered even when
// the capture is debounced.
func (s *Scheduler) Decide(elapsed time.Duration, fingerprint int32) (Trigger, bool) {
	if elapsed >= s.settings.MaxInterval {
		return TriggerStale, true
	}
	if fingerprint != s.lastFingerprint {
		s.lastFingerprint = fingerprint
		return TriggerChanged, elapsed >= s.settings.MinInterval
	}
	return "", false
}

// NextDelay returns the delay before the next tick
func (s *Scheduler) NextDelay(elapsed time.Duration) time.Duration {
	if elapsed > s.settings.StaticAfter {
		return s.settings.StaticDelay
	}
	return s.settings.DynamicDelay
}

// CaptureNow requests an immediate capture. Requests made while one is
// pending are coalesced.
func (s *Scheduler) CaptureNow() {
	select {
	case s.captureNow <- struct{}{}:
	default:
	}
}

// Run drives the tick loop until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	s.logger.Info("Adaptive scheduler started",
		zap.Duration("min_interval", s.settings.MinInterval),
		zap.Duration("max_interval", s.settings.MaxInterval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Adaptive scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			timer.Reset(s.tick(ctx))
		case <-s.captureNow:
			s.saver.SaveLatest(ctx, TriggerEvent)
			s.lastCapture = s.now()
		}
	}
}

// tick runs one scheduling decision and returns the next delay
func (s *Scheduler) tick(ctx context.Context) time.Duration {
	now := s.now()
	elapsed := now.Sub(s.lastCapture)

	if trigger, ok := s.Decide(elapsed, s.source.Fingerprint()); ok {
		s.logger.Debug("Capturing", zap.String("trigger", string(trigger)), zap.Duration("elapsed", elapsed))
		s.saver.SaveLatest(ctx, trigger)
		s.lastCapture = now
	}

	return s.NextDelay(elapsed)
}
