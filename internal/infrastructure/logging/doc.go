// Package logging provides structured logging for nilmlab.
//
// This package wraps Go's standard log/slog package so every component logs
// the same way: JSON for batch experiment runs, text when run by hand, with
// service and version attached to every record.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("experiment prepared", "experiment", exp.Name, "rows", rows)
//	logger.Error("dataset read failed", "error", err)
package logging
