package store

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/shared/paths"
)

// tempMaxAge bounds how long an abandoned temp write may linger
const tempMaxAge = time.Hour

// Prune removes event files older than maxAge, empty event files and
// abandoned temp files. It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	var removed atomic.Int64
	now := s.now()
	root := s.layout.Root

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		age := now.Sub(info.ModTime())

		name := d.Name()
		var stale bool
		switch {
		case IsEventName(name):
			stale = info.Size() == 0 || (maxAge > 0 && age > maxAge)
		case isTempName(name):
			stale = age > tempMaxAge
		}
		if !stale {
			return nil
		}

		if err := os.Remove(p); err != nil {
			s.logger.Warn("Prune failed", zap.String("name", name), zap.Error(err))
			return nil
		}
		removed.Add(1)
		s.logger.Debug("Pruned", zap.String("name", name), zap.Duration("age", age), zap.Int64("size", info.Size()))
		return nil
	})

	return int(removed.Load()), err
}

func isTempName(name string) bool {
	ok, err := doublestar.Match(paths.TempPattern, name)
	return err == nil && ok
}
