package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uicapture/internal/codec"
	"github.com/GriffinCanCode/uicapture/internal/shared/id"
	"github.com/GriffinCanCode/uicapture/internal/shared/paths"
	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// ErrOutsideRoot is returned when a path resolves outside the storage root
var ErrOutsideRoot = errors.New("path escapes storage root")

// Entry describes one stored event file
type Entry struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modTime" yaml:"modTime"`
}

// Options configures a Store
type Options struct {
	Dir         string
	Codec       *codec.Codec
	UniqueNames bool
	Logger      *zap.Logger
}

// Store reads and writes event files
type Store struct {
	layout paths.Layout
	codec  *codec.Codec
	unique bool
	ids    *id.Generator
	logger *zap.Logger
	now    func() time.Time
}

// New opens (creating if needed) the storage root
func New(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("store: directory required")
	}
	if opts.Codec == nil {
		c, err := codec.New("")
		if err != nil {
			return nil, err
		}
		opts.Codec = c
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create root: %w", err)
	}
	abs, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("store: resolve root: %w", err)
	}

	return &Store{
		layout: paths.Layout{Root: root},
		codec:  opts.Codec,
		unique: opts.UniqueNames,
		ids:    id.NewGenerator(rand.Reader),
		logger: opts.Logger.Named("store"),
		now:    time.Now,
	}, nil
}

// Root returns the canonical storage root
func (s *Store) Root() string {
	return s.layout.Root
}

// FileName builds the stored name for a package captured at t
func FileName(pkg string, t time.Time) string {
	return paths.EventPrefix + paths.PackageToken(pkg) + "_" + t.Local().Format(paths.TimeLayout) + paths.EventExt
}

// Save encodes rec and writes it under a fresh event name
func (s *Store) Save(rec *types.CaptureRecord) (Entry, error) {
	data, err := s.codec.Marshal(rec)
	if err != nil {
		return Entry{}, fmt.Errorf("store: encode: %w", err)
	}

	name := FileName(rec.PackageName, s.now())
	if s.unique {
		name = strings.TrimSuffix(name, paths.EventExt) + "_" + s.ids.Suffix() + paths.EventExt
	}

	tmp, err := os.CreateTemp(s.layout.Root, paths.TempPattern)
	if err != nil {
		return Entry{}, fmt.Errorf("store: create temp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("store: close: %w", err)
	}

	target := s.layout.Event(name)
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("store: rename: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return Entry{}, fmt.Errorf("store: stat: %w", err)
	}

	s.logger.Debug("Saved event", zap.String("name", name), zap.Int("bytes", len(data)))
	return Entry{Name: name, Path: target, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns every regular, readable, non-empty event file in the root.
// Order is unspecified.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.layout.Root)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || !IsEventName(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		p := s.layout.Event(de.Name())
		if !readable(p) {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Path: p, Size: info.Size(), ModTime: info.ModTime()})
	}
	return entries, nil
}

// IsEventName reports whether name follows the event file convention
func IsEventName(name string) bool {
	ok, err := doublestar.Match(paths.EventPattern, name)
	return err == nil && ok
}

func readable(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Contains reports whether the canonical form of path lies inside the root
func (s *Store) Contains(path string) bool {
	rel, err := filepath.Rel(s.layout.Root, path)
	if err != nil || rel == "." {
		return false
	}
	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve returns the canonical path of a stored name. A missing file
// yields an error wrapping fs.ErrNotExist.
func (s *Store) Resolve(name string) (string, error) {
	if err := paths.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutsideRoot, err)
	}
	canon, err := filepath.EvalSymlinks(s.layout.Event(name))
	if err != nil {
		return "", fmt.Errorf("store: resolve %s: %w", name, err)
	}
	if !s.Contains(canon) {
		return "", fmt.Errorf("%w: %s -> %s", ErrOutsideRoot, name, canon)
	}
	return canon, nil
}

// Stat re-verifies a stored name: it must exist, be a regular file and
// resolve inside the root.
func (s *Store) Stat(name string) (Entry, error) {
	canon, err := s.Resolve(name)
	if err != nil {
		return Entry{}, err
	}
	info, err := os.Stat(canon)
	if err != nil {
		return Entry{}, fmt.Errorf("store: stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("store: %s is not a regular file", name)
	}
	return Entry{Name: name, Path: s.layout.Event(name), Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ReadFile returns the raw stored bytes of name
func (s *Store) ReadFile(name string) ([]byte, error) {
	canon, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(canon)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	return data, nil
}

// Load reads and decodes a stored record
func (s *Store) Load(name string) (*types.CaptureRecord, error) {
	data, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	rec, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", name, err)
	}
	return rec, nil
}

// Delete removes the file a stored name resolves to inside the root
func (s *Store) Delete(name string) error {
	canon, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(canon); err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	return nil
}

// IsNotExist reports whether err means the stored file is gone
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
