// Package logging provides structured logging for asset-desk.
//
// This package wraps go.uber.org/zap to provide consistent, structured
// logging across the application.
//
// # Features
//
//   - JSON output (machine-parsable) or console text (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// Command output is written to stdout, so logs default to stderr.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("database opened", "path", cfg.Database.Path)
//	logger.Error("assign failed", "error", err)
package logging
