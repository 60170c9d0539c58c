package logging

import (
	"log/slog"
	"strings"
)

// DefaultLevel is the log level used when not configured.
const DefaultLevel = slog.LevelInfo

// LevelSilent is above every level a record is logged at; a handler set to
// it writes nothing.
const LevelSilent = slog.LevelError + 64

// ParseLevel converts a string log level to slog.Level.
// Supported values: "debug", "info", "warn" (or "warning"), "error",
// case-insensitive. Returns (DefaultLevel, false) if the string is not
// recognized.
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return DefaultLevel, false
	}
}

// ParseLevelOrDefault converts a string log level to slog.Level.
// Returns DefaultLevel if the string is not recognized.
func ParseLevelOrDefault(s string) slog.Level {
	level, _ := ParseLevel(s)
	return level
}

// VerbosityLevel maps a job file VERBOSITY value to the stderr log level:
// silent writes nothing, normal writes info and above, verbose writes
// everything.
func VerbosityLevel(verbosity string) (slog.Level, bool) {
	switch strings.ToLower(verbosity) {
	case "silent":
		return LevelSilent, true
	case "normal":
		return slog.LevelInfo, true
	case "verbose":
		return slog.LevelDebug, true
	default:
		return DefaultLevel, false
	}
}
