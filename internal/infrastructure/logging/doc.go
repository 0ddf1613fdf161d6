// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that commands printing data (inspect,
// list) keep stdout clean.
//
// Every component receives a *zap.Logger and names itself:
//
//	logger, _ := logging.New(logging.DefaultConfig())
//	store, _ := store.New(store.Options{Dir: dir, Logger: logger.Logger})
//	// {"logger":"store","message":"Saved event",...}
package logging
