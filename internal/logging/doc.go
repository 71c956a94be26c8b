// Package logging provides structured logging with per-module log levels.
//
// Records go to the systemd journal when journald is reachable and to stdout
// when stdout is a terminal, pipe, socket or file. With both present a
// MultiHandler fans out to each.
//
// Initialize once at startup, then ask for module loggers:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"bln":      "debug",
//			"wakelock": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("bln")
//	logger.Info("Notification LED enabled", "blinking", true)
//
// Module levels are backed by slog.LevelVar, so ApplyLevels and SetLevel
// change them at runtime without handing out new loggers.
//
// Journal records carry SYSLOG_IDENTIFIER=blnd and one upper-cased field per
// attribute:
//
//	journalctl -t blnd -f
//	journalctl -t blnd MODULE=wakelock
package logging
