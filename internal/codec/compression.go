package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names a block-compression filter
type Compression string

const (
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
	CompressionS2   Compression = "s2"
)

// ErrUnknownCompression is returned for unsupported names and unrecognised frames
var ErrUnknownCompression = errors.New("unknown compression")

var (
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicS2   = []byte{0xff, 0x06, 0x00, 0x00, 'S', '2', 's', 'T', 'w', 'O'}
)

// ParseCompression validates a compression name. Empty means lz4.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompressionLZ4, nil
	case CompressionLZ4, CompressionZstd, CompressionS2:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// Detect identifies the filter that produced data from its frame magic
func Detect(data []byte) (Compression, error) {
	switch {
	case bytes.HasPrefix(data, magicLZ4):
		return CompressionLZ4, nil
	case bytes.HasPrefix(data, magicZstd):
		return CompressionZstd, nil
	case bytes.HasPrefix(data, magicS2):
		return CompressionS2, nil
	default:
		return "", ErrUnknownCompression
	}
}

// Compress runs data through the named filter
func Compress(c Compression, data []byte) ([]byte, error) {
	var buf bytes.Buffer

	var w io.WriteCloser
	switch c {
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	case CompressionZstd:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		w = enc
	case CompressionS2:
		w = s2.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("%s compress: %w", c, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s flush: %w", c, err)
	}

	return buf.Bytes(), nil
}

// Decompress sniffs the filter and reverses it
func Decompress(data []byte) ([]byte, error) {
	c, err := Detect(data)
	if err != nil {
		return nil, err
	}

	src := bytes.NewReader(data)
	var r io.Reader
	switch c {
	case CompressionLZ4:
		r = lz4.NewReader(src)
	case CompressionZstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	case CompressionS2:
		r = s2.NewReader(src)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", c, err)
	}
	return out, nil
}
