// Package snapshot holds the latest not-yet-saved capture record.
//
// The Slot is a last-write-wins holder shared by the extraction path (the
// producer) and every save trigger (the consumers). Take is an atomic
// take-and-clear, so two consumers racing for the same record cannot both
// save it and a second Take is a no-op.
package snapshot

import (
	"sync/atomic"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// Slot is a single-record holder plus the fingerprint of the latest frame
type Slot struct {
	record      atomic.Pointer[types.CaptureRecord]
	fingerprint atomic.Int32
}

// New creates an empty slot
func New() *Slot {
	return &Slot{}
}

// Put overwrites the held record and fingerprint
func (s *Slot) Put(rec *types.CaptureRecord, fingerprint int32) {
	s.fingerprint.Store(fingerprint)
	s.record.Store(rec)
}

// Take returns the held record and clears the slot. Nil when empty.
func (s *Slot) Take() *types.CaptureRecord {
	return s.record.Swap(nil)
}

// Peek returns the held record without clearing it
func (s *Slot) Peek() *types.CaptureRecord {
	return s.record.Load()
}

// Fingerprint returns the fingerprint of the most recent frame
func (s *Slot) Fingerprint() int32 {
	return s.fingerprint.Load()
}
