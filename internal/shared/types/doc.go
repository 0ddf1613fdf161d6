// Package types provides shared data structures for the capture pipeline.
//
// Core Types:
//   - CaptureRecord: One observed screen (window metadata + text data)
//   - TextFocusedData: Ordered text elements plus their screen summary
//   - TextElement: One node that carried visible or accessible text
//   - ScreenSummary: Aggregates derived from a TextElement sequence
//
// Enumerations:
//   - ElementType: Rule-inferred node type (password, input, button, ...)
//   - WindowType: Class-name based window classification
//   - EventKind: Host event that delivered a frame
//
// Example Usage:
//
//	rec := &types.CaptureRecord{
//	    Timestamp:   time.Now().UnixMilli(),
//	    PackageName: "com.example.mail",
//	    WindowType:  types.WindowActivity,
//	}
package types
