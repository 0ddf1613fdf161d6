package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

func sampleRecord() *types.CaptureRecord {
	return &types.CaptureRecord{
		Timestamp:   1718000000123,
		PackageName: "com.example.mail",
		WindowID:    42,
		WindowTitle: "android.widget.FrameLayout",
		WindowType:  types.WindowOther,
		TextFocusedData: types.TextFocusedData{
			Timestamp:   1718000000123,
			PackageName: "com.example.mail",
			TextData: []types.TextElement{
				{Text: "Inbox", Type: types.ElementText, ClassName: "android.widget.TextView", Depth: 1, X: 540, Y: 120, Width: 1080, Height: 96},
				{Text: "Email | you@example.com", Type: types.ElementInput, IsEditable: true, ClassName: "android.widget.EditText", Depth: 2, X: 540, Y: 400, Width: 900, Height: 120},
				{Text: "Send", Type: types.ElementButton, IsClickable: true, ClassName: "android.widget.Button", Depth: 2, X: -5, Y: 700, Width: 300, Height: 100},
			},
			ScreenSummary: types.ScreenSummary{
				CombinedText:   "Inbox Email | you@example.com Send",
				ElementCounts:  map[string]int32{types.ElementText: 1, types.ElementInput: 1, types.ElementButton: 1},
				HasEmailField:  true,
				ClickableCount: 1,
				EditableCount:  1,
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"lz4", "zstd", "s2"} {
		t.Run(name, func(t *testing.T) {
			c, err := New(name)
			require.NoError(t, err)

			data, err := c.Marshal(sampleRecord())
			require.NoError(t, err)

			detected, err := Detect(data)
			require.NoError(t, err)
			assert.Equal(t, Compression(name), detected)

			got, err := c.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, sampleRecord(), got)
		})
	}
}

func TestRoundTripEmptyRecord(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, c.Compression())

	rec := &types.CaptureRecord{
		TextFocusedData: types.TextFocusedData{
			TextData:      []types.TextElement{},
			ScreenSummary: types.ScreenSummary{ElementCounts: map[string]int32{}},
		},
	}

	data, err := c.Marshal(rec)
	require.NoError(t, err)

	got, err := c.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestUnmarshalAcrossCompressions(t *testing.T) {
	writer, err := New("zstd")
	require.NoError(t, err)
	reader, err := New("lz4")
	require.NoError(t, err)

	data, err := writer.Marshal(sampleRecord())
	require.NoError(t, err)

	got, err := reader.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "com.example.mail", got.PackageName)
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := Encode(sampleRecord())
	for i := 0; i < 20; i++ {
		assert.Equal(t, a, Encode(sampleRecord()))
	}
}

func TestEncodeFieldNumbers(t *testing.T) {
	b := Encode(&types.CaptureRecord{Timestamp: 7, PackageName: "p"})

	num, typ, n := protowire.ConsumeTag(b)
	require.Positive(t, n)
	assert.Equal(t, protowire.Number(1), num)
	assert.Equal(t, protowire.VarintType, typ)

	v, m := protowire.ConsumeVarint(b[n:])
	require.Positive(t, m)
	assert.Equal(t, uint64(7), v)

	num, typ, _ = protowire.ConsumeTag(b[n+m:])
	assert.Equal(t, protowire.Number(2), num)
	assert.Equal(t, protowire.BytesType, typ)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	b := Encode(sampleRecord())
	b = protowire.AppendTag(b, 99, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 0xdeadbeef)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), got)
}

func TestDecodeTruncated(t *testing.T) {
	b := Encode(sampleRecord())
	_, err := Decode(b[:len(b)-3])
	assert.Error(t, err)
}

func TestCompressionErrors(t *testing.T) {
	_, err := New("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)

	_, err = Decompress([]byte("not compressed at all"))
	assert.ErrorIs(t, err, ErrUnknownCompression)

	_, err = Compress("gzip", []byte("x"))
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in   string
		want Compression
	}{
		{"", CompressionLZ4},
		{"LZ4", CompressionLZ4},
		{" zstd ", CompressionZstd},
		{"s2", CompressionS2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
