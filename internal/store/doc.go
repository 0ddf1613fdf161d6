// Package store persists capture records as files in a private storage root.
//
// Names follow event_<pkg with '.' replaced by '_'>_<HH:mm:ss_dd-MM-yyyy>.pb
// in local time. Second resolution means two saves for one package within
// the same second overwrite each other unless unique names are enabled, in
// which case a ULID is appended before the extension.
//
// Every path the store touches is resolved through symlinks and must land
// inside the canonical root; anything else fails with ErrOutsideRoot.
package store
