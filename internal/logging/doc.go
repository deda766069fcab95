// Package logging provides structured logging for vininsight.
//
// This package wraps a global zap logger with convenience functions. Logging
// is silent unless a level is supplied by flag or by VININSIGHT_LOG_LEVEL,
// so CLI output and the interactive UI are never interleaved with log lines.
//
// # Log Levels
//
//   - Debug: HTTP traffic, decode status transitions
//   - Info: vehicle list loads, credential saves
//   - Warn: failed requests, decode errors
//   - Error: start-up failures
//
// # Credentials
//
// URLs pass through RedactURL before they are logged. The decode API key is
// sent as a query parameter and never appears in log output.
//
// # Configuration
//
//	if err := logging.Initialize("debug", "/tmp/vininsight.log"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
package logging
