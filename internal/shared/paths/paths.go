package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File naming
const (
	EventPrefix  = "event_"
	EventExt     = ".pb"
	EventPattern = EventPrefix + "*" + EventExt

	TempPattern = ".event-*.tmp"

	DeviceFile = "device.toml"

	// TimeLayout renders HH:mm:ss_dd-MM-yyyy
	TimeLayout = "15:04:05_02-01-2006"
)

// Layout resolves names against one storage root
type Layout struct {
	Root string
}

// Event returns the path of a stored event
func (l Layout) Event(name string) string {
	return filepath.Join(l.Root, name)
}

// Device returns the path of the device name file
func (l Layout) Device() string {
	return filepath.Join(l.Root, DeviceFile)
}

// PackageToken turns a package name into its file-name form
func PackageToken(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "_")
}

// ValidateName checks that name is a bare file name
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("file name %q is a directory reference", name)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("file name %q contains path separators", name)
	}
	return nil
}
