// Package extract turns a live UI tree into a CaptureRecord and computes the
// cheap fingerprint used to detect content changes between frames.
//
// The tree is reached through the Node interface, which the host implements
// on top of its own node handles. Child handles acquired while walking are
// released by this package on every exit path; the root handle stays owned
// by the caller.
//
// Type inference (first match wins):
//   - password field: "password"
//   - editable: "input"
//   - class name contains "Button": "button"
//   - clickable with text: "clickable_text"
//   - class name contains "TextView": "text"
//   - class name contains "ImageView": "image"
//   - otherwise: "other"
//
// Example Usage:
//
//	ex := extract.New(logger)
//	fp, _ := extract.Fingerprint(root)
//	rec, err := ex.Extract(root)
package extract
