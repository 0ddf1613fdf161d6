// Package cli implements the uicapture command tree.
//
//	uicapture run      capture, persist and upload until interrupted
//	uicapture upload   run one upload pass now
//	uicapture list     list event files awaiting upload
//	uicapture inspect  decode an event file
//
// Settings come from the environment (see internal/infrastructure/config);
// persistent flags override individual values.
package cli
