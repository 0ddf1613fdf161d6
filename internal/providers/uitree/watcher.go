package uitree

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/domain/extract"
	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// FrameHandler receives each delivered frame. The root stays owned by the watcher.
type FrameHandler func(root extract.Node, kind types.EventKind)

// Watcher polls a dump file and delivers a frame whenever it changes
type Watcher struct {
	path     string
	interval time.Duration
	handler  FrameHandler
	logger   *zap.Logger

	modTime time.Time
	size    int64
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, interval time.Duration, handler FrameHandler, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		interval: interval,
		handler:  handler,
		logger:   logger.Named("uitree"),
	}
}

// Run polls until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Watching tree dump", zap.String("path", w.path), zap.Duration("interval", w.interval))
	w.poll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll delivers the dump if it changed since the last delivery
func (w *Watcher) poll() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Stat dump failed", zap.Error(err))
		}
		return false
	}
	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return false
	}

	w.modTime, w.size = info.ModTime(), info.Size()

	frame, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Skipping unreadable dump", zap.Error(err))
		return false
	}

	w.handler(frame.Root, frame.Kind())
	return true
}
