// Package logging provides structured logging with per-module log levels.
//
// Records go to stderr as text or JSON, never to stdout, since stdout may
// carry the rendered stream. When enabled in the config and journald is
// reachable, records are also sent to the systemd journal under the
// "teres" identifier. Every record is kept in a bounded ring buffer so a
// failed render can print the transcoder's last diagnostics.
//
// Initialize once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"ffmpeg": "warn",
//			"vspipe": "debug",
//		},
//	})
//
// Then per module:
//
//	logger := logging.GetLogger("render")
//	logger.Info("Finished processing", "output", name, "elapsed", d)
//
// Loggers obtained before Initialize pick up their configured level, since
// each module owns a slog.LevelVar.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	journal = true
//
//	[logging.modules]
//	ffmpeg = "warn"
package logging
