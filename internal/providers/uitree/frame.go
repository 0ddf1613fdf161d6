package uitree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// Format is a dump encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Frame is one delivered tree plus the event that produced it
type Frame struct {
	Event string `json:"event,omitempty" yaml:"event,omitempty"`
	Root  *Node  `json:"root" yaml:"root"`
}

// Kind returns the parsed event kind
func (f *Frame) Kind() types.EventKind {
	return types.ParseEventKind(f.Event)
}

// FormatFor picks the encoding from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported dump extension %q", filepath.Ext(path))
	}
}

// Decode parses a dump
func Decode(data []byte, format Format) (*Frame, error) {
	var f Frame
	var err error
	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported dump format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s dump: %w", format, err)
	}
	if f.Root == nil {
		return nil, fmt.Errorf("dump has no root node")
	}
	return &f, nil
}

// Encode renders a frame
func Encode(f *Frame, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sonic.ConfigStd.MarshalIndent(f, "", "  ")
	case FormatYAML:
		return yaml.Marshal(f)
	default:
		return nil, fmt.Errorf("unsupported dump format %q", format)
	}
}

// Load reads and parses a dump file
func Load(path string) (*Frame, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	return Decode(data, format)
}
