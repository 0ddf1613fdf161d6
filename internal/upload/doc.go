// Package upload ships stored events to the collector.
//
// A Coordinator runs one pass per minute boundary. A pass:
//
//  1. prunes stale and empty files when retention is enabled
//  2. selects files older than the grace period (none: idle, no network)
//  3. clears the per-pass dedup set
//  4. makes up to MaxAttempts multipart POSTs of the files that still exist,
//     are regular and resolve inside the storage root
//
// Reply handling:
//
//	2xx          delete every included file, signal online, stop
//	5xx          warn, wait RetryDelay, retry while attempts remain
//	other        log body, stop
//	no reply     wait RetryDelay, retry while attempts remain
//
// Passes are serialised by a process-lifetime mutex; the dedup set has its
// own mutex and is scoped to a single pass. Nothing survives a restart except
// the device name in device.toml.
package upload
