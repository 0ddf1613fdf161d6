// Package paths defines the on-disk layout of the private storage root.
//
// # Directory Structure
//
//	<root>/
//	  ├── event_<pkg>_<HH:mm:ss_dd-MM-yyyy>.pb   (pending capture records)
//	  ├── .event-*.tmp                           (in-progress writes)
//	  └── device.toml                            (persisted device name)
//
// Every path handed out by the store is a direct child of the root; nested
// directories are never created or read.
package paths
