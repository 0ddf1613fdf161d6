// Package schedule decides when the latest snapshot gets saved.
//
// Three independent triggers converge on one idempotent save operation:
//   - Scheduler: adaptive tick loop driven by content fingerprints. It captures
//     when content changed (debounced by MinInterval) or when nothing was
//     captured for MaxInterval, and tightens or relaxes its own tick delay
//     depending on how recently it captured.
//   - Scheduler.CaptureNow: out-of-band capture for important host events,
//     bypassing the tick decision.
//   - Cadence: fixed-interval saver gated on the display being on.
//
// Decision table (defaults):
//
//	elapsed >= 5s                      -> capture (stale)
//	fingerprint changed, elapsed >= 1s -> capture
//	fingerprint changed, elapsed <  1s -> skip, remember fingerprint
//	otherwise                          -> skip
//
// Next tick: 2s when elapsed > 3s, else 500ms.
package schedule
