// Package logging provides structured logging for fluxmap.
//
// It wraps log/slog with JSON output, persistent attributes, and
// size-based file rotation. The TUI owns the terminal, so diagnostics go
// to a file under the configured directory (or are discarded through
// [NopLogger]) instead of stderr, which would write over the rendered
// frame.
//
// Creating a logger:
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
// Child loggers carry context to every entry they write:
//
//	logger.WithComponent("ingest").WithNode("worker_2").WithRepo("acme/widgets").
//	    Info("fragment dispatched", "file", "pkg/auth/token.go")
//
// Rotated files keep numbered suffixes, fluxmap.log.1 being the newest
// backup, with an optional .gz when compression is on. All types are safe
// for concurrent use.
//
// The usual source of settings is the logging section of the config file:
//
//	logging:
//	  dir: ~/.fluxmap/logs
//	  level: info
//	  max_size_mb: 10
//	  max_backups: 3
package logging
