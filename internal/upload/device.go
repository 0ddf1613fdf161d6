package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
)

// ErrNotPersisted marks a device name that is usable but could not be
// written to device.toml.
var ErrNotPersisted = errors.New("device name not persisted")

type deviceFile struct {
	Name      string    `toml:"name"`
	CreatedAt time.Time `toml:"created_at"`
}

// Device lazily resolves the display name sent with every batch.
// Resolution order: explicit override, device.toml, derived from the host.
type Device struct {
	path     string
	override string
	derive   func() string

	mu   sync.Mutex
	name string
}

// NewDevice creates a resolver persisting to path
func NewDevice(path, override string) *Device {
	return &Device{path: path, override: strings.TrimSpace(override), derive: hostDeviceName}
}

// Name returns the cached device name, computing and persisting it on first use.
// A failed write still returns the derived name, cached in memory, together
// with an error wrapping ErrNotPersisted.
func (d *Device) Name() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.name != "" {
		return d.name, nil
	}
	if d.override != "" {
		d.name = d.override
		return d.name, nil
	}

	stored, err := d.load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if stored != "" {
		d.name = stored
		return d.name, nil
	}

	d.name = d.derive()
	if err := d.save(d.name); err != nil {
		return d.name, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return d.name, nil
}

// Set replaces and persists the device name
func (d *Device) Set(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("device name cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.save(name); err != nil {
		return err
	}
	d.name = name
	d.override = ""
	return nil
}

func (d *Device) load() (string, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return "", err
	}
	var f deviceFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("parse %s: %w", d.path, err)
	}
	return strings.TrimSpace(f.Name), nil
}

func (d *Device) save(name string) error {
	data, err := toml.Marshal(deviceFile{Name: name, CreatedAt: time.Now().UTC().Truncate(time.Second)})
	if err != nil {
		return fmt.Errorf("encode device name: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// FormatDeviceName joins manufacturer and model, dropping the manufacturer
// when the model already starts with it.
func FormatDeviceName(manufacturer, model string) string {
	if strings.HasPrefix(strings.ToLower(model), strings.ToLower(manufacturer)) {
		return capitalize(model)
	}
	return capitalize(manufacturer) + " " + model
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func hostDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return FormatDeviceName(runtime.GOOS, host)
}
