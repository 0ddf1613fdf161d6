package codec

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// Encode writes rec in protobuf wire format. Zero scalars are omitted;
// nested messages are always present. Map entries are emitted in key order
// so equal records encode to equal bytes.
func Encode(rec *types.CaptureRecord) []byte {
	b := make([]byte, 0, 256)
	b = appendInt64(b, 1, rec.Timestamp)
	b = appendString(b, 2, rec.PackageName)
	b = appendInt64(b, 3, int64(rec.WindowID))
	b = appendString(b, 4, rec.WindowTitle)
	b = appendString(b, 5, rec.WindowType)
	b = appendMessage(b, 6, encodeTextFocusedData(&rec.TextFocusedData))
	return b
}

func encodeTextFocusedData(d *types.TextFocusedData) []byte {
	var b []byte
	b = appendInt64(b, 1, d.Timestamp)
	b = appendString(b, 2, d.PackageName)
	for i := range d.TextData {
		b = appendMessage(b, 3, encodeTextElement(&d.TextData[i]))
	}
	b = appendMessage(b, 4, encodeScreenSummary(&d.ScreenSummary))
	return b
}

func encodeTextElement(e *types.TextElement) []byte {
	var b []byte
	b = appendString(b, 1, e.Text)
	b = appendString(b, 2, e.Type)
	b = appendBool(b, 3, e.IsClickable)
	b = appendBool(b, 4, e.IsEditable)
	b = appendString(b, 5, e.ClassName)
	b = appendInt64(b, 6, int64(e.Depth))
	b = appendInt64(b, 7, int64(e.X))
	b = appendInt64(b, 8, int64(e.Y))
	b = appendInt64(b, 9, int64(e.Width))
	b = appendInt64(b, 10, int64(e.Height))
	return b
}

func encodeScreenSummary(s *types.ScreenSummary) []byte {
	var b []byte
	b = appendString(b, 1, s.CombinedText)
	b = appendMessage(b, 2, encodeCounts(s.ElementCounts))
	b = appendBool(b, 3, s.HasEmailField)
	b = appendBool(b, 4, s.HasPasswordField)
	b = appendBool(b, 5, s.HasSearchField)
	b = appendInt64(b, 6, int64(s.ClickableCount))
	b = appendInt64(b, 7, int64(s.EditableCount))
	return b
}

func encodeCounts(counts map[string]int32) []byte {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b []byte
	for _, k := range keys {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendInt64(entry, 2, int64(counts[k]))
		b = appendMessage(b, 1, entry)
	}
	return b
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// Decode parses a record written by Encode. Unknown fields are skipped.
func Decode(b []byte) (*types.CaptureRecord, error) {
	rec := &types.CaptureRecord{}
	rec.TextFocusedData.TextData = []types.TextElement{}
	rec.TextFocusedData.ScreenSummary.ElementCounts = map[string]int32{}

	err := walk(b, func(num protowire.Number, v field) error {
		switch num {
		case 1:
			rec.Timestamp = int64(v.varint)
		case 2:
			rec.PackageName = string(v.bytes)
		case 3:
			rec.WindowID = int32(v.varint)
		case 4:
			rec.WindowTitle = string(v.bytes)
		case 5:
			rec.WindowType = string(v.bytes)
		case 6:
			return decodeTextFocusedData(v.bytes, &rec.TextFocusedData)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode capture record: %w", err)
	}
	return rec, nil
}

func decodeTextFocusedData(b []byte, d *types.TextFocusedData) error {
	return walk(b, func(num protowire.Number, v field) error {
		switch num {
		case 1:
			d.Timestamp = int64(v.varint)
		case 2:
			d.PackageName = string(v.bytes)
		case 3:
			var e types.TextElement
			if err := decodeTextElement(v.bytes, &e); err != nil {
				return fmt.Errorf("text element %d: %w", len(d.TextData), err)
			}
			d.TextData = append(d.TextData, e)
		case 4:
			return decodeScreenSummary(v.bytes, &d.ScreenSummary)
		}
		return nil
	})
}

func decodeTextElement(b []byte, e *types.TextElement) error {
	return walk(b, func(num protowire.Number, v field) error {
		switch num {
		case 1:
			e.Text = string(v.bytes)
		case 2:
			e.Type = string(v.bytes)
		case 3:
			e.IsClickable = protowire.DecodeBool(v.varint)
		case 4:
			e.IsEditable = protowire.DecodeBool(v.varint)
		case 5:
			e.ClassName = string(v.bytes)
		case 6:
			e.Depth = int32(v.varint)
		case 7:
			e.X = int32(v.varint)
		case 8:
			e.Y = int32(v.varint)
		case 9:
			e.Width = int32(v.varint)
		case 10:
			e.Height = int32(v.varint)
		}
		return nil
	})
}

func decodeScreenSummary(b []byte, s *types.ScreenSummary) error {
	if s.ElementCounts == nil {
		s.ElementCounts = map[string]int32{}
	}
	return walk(b, func(num protowire.Number, v field) error {
		switch num {
		case 1:
			s.CombinedText = string(v.bytes)
		case 2:
			return decodeCounts(v.bytes, s.ElementCounts)
		case 3:
			s.HasEmailField = protowire.DecodeBool(v.varint)
		case 4:
			s.HasPasswordField = protowire.DecodeBool(v.varint)
		case 5:
			s.HasSearchField = protowire.DecodeBool(v.varint)
		case 6:
			s.ClickableCount = int32(v.varint)
		case 7:
			s.EditableCount = int32(v.varint)
		}
		return nil
	})
}

func decodeCounts(b []byte, counts map[string]int32) error {
	return walk(b, func(num protowire.Number, v field) error {
		if num != 1 {
			return nil
		}
		var (
			key   string
			value int32
		)
		err := walk(v.bytes, func(num protowire.Number, v field) error {
			switch num {
			case 1:
				key = string(v.bytes)
			case 2:
				value = int32(v.varint)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("element count entry: %w", err)
		}
		counts[key] = value
		return nil
	})
}

// field is one decoded wire value; only the member matching its type is set
type field struct {
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// walk iterates the top-level fields of a message
func walk(b []byte, fn func(protowire.Number, field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(num, f); err != nil {
			return err
		}
	}
	return nil
}
