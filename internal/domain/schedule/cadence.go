package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Display reports whether the display is powered on
type Display interface {
	Interactive() bool
}

// DisplayFunc adapts a function to the Display interface
type DisplayFunc func() bool

// Interactive implements Display
func (f DisplayFunc) Interactive() bool { return f() }

// AlwaysOn is a Display that is never off
var AlwaysOn Display = DisplayFunc(func() bool { return true })

// Cadence saves the latest snapshot at a fixed interval while the display is on.
// It ignores fingerprints entirely.
type Cadence struct {
	interval time.Duration
	display  Display
	saver    Saver
	logger   *zap.Logger
}

// NewCadence creates a fixed-interval saver
func NewCadence(interval time.Duration, display Display, saver Saver, logger *zap.Logger) *Cadence {
	if display == nil {
		display = AlwaysOn
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cadence{
		interval: interval,
		display:  display,
		saver:    saver,
		logger:   logger.Named("cadence"),
	}
}

// Run saves every interval until ctx is cancelled
func (c *Cadence) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("Fixed cadence saver started", zap.Duration("interval", c.interval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if c.display.Interactive() {
				c.saver.SaveLatest(ctx, TriggerCadence)
			}
		}
	}
}
