// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stderr when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Stdout is never used for logs; it carries the device listing.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"devices": "debug",  // Per-module overrides
//			"mqtt":    "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("devices")
//	logger.Info("Scan completed", "devices", 3)
//	logger.Warn("Skipping unreadable device", "path", path, "error", err)
//
// # Viewing Logs
//
// When running on a system with journald:
//
//	journalctl -t lightnode                # All lightnode logs
//	journalctl -t lightnode MODULE=devices # Filter by module
//	journalctl -t lightnode -p err         # Errors only
//
// # Configuration
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	devices = "debug"
package logging
