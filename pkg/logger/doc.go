// Package logger provides the structured logging interface used across igunfollow.
//
// It wraps zerolog behind a small Logger interface:
//   - leveled methods (Debug, Info, Warn, Error, Fatal)
//   - field-carrying loggers via WithField, WithFields and WithError
//   - colored console output on stderr, optionally mirrored to a file
//   - a global instance configured once from config.LoggingConfig
//
// Basic usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "fetch")
//	log.InfoWithFields("page loaded", map[string]interface{}{
//	    "relation": "followers",
//	    "total":    150,
//	})
//
// Tests use NewTestLogger to capture entries, or NewNopLogger to discard them.
package logger
