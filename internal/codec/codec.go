package codec

import (
	"fmt"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// Extension is the file extension of stored records
const Extension = ".pb"

// Codec marshals records with a fixed compression filter
type Codec struct {
	compression Compression
}

// New creates a codec; an empty name selects lz4
func New(compression string) (*Codec, error) {
	c, err := ParseCompression(compression)
	if err != nil {
		return nil, err
	}
	return &Codec{compression: c}, nil
}

// Compression returns the filter used for writing
func (c *Codec) Compression() Compression {
	return c.compression
}

// Marshal encodes and compresses rec
func (c *Codec) Marshal(rec *types.CaptureRecord) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("marshal: nil record")
	}
	return Compress(c.compression, Encode(rec))
}

// Unmarshal decompresses and decodes data, whatever filter produced it
func (c *Codec) Unmarshal(data []byte) (*types.CaptureRecord, error) {
	raw, err := Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return Decode(raw)
}
