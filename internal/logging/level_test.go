package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel slog.Level
		wantOK    bool
	}{
		{"debug lowercase", "debug", slog.LevelDebug, true},
		{"info lowercase", "info", slog.LevelInfo, true},
		{"warn lowercase", "warn", slog.LevelWarn, true},
		{"warning full word", "warning", slog.LevelWarn, true},
		{"error lowercase", "error", slog.LevelError, true},
		{"DEBUG uppercase", "DEBUG", slog.LevelDebug, true},
		{"Error mixed", "Error", slog.LevelError, true},
		{"empty string", "", slog.LevelInfo, false},
		{"unknown level", "trace", slog.LevelInfo, false},
		{"typo", "infoo", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLevel, gotOK := ParseLevel(tt.input)
			if gotOK != tt.wantOK {
				t.Errorf("ParseLevel(%q) ok = %v, want %v", tt.input, gotOK, tt.wantOK)
			}
			if gotLevel != tt.wantLevel {
				t.Errorf("ParseLevel(%q) level = %v, want %v", tt.input, gotLevel, tt.wantLevel)
			}
		})
	}
}

func TestParseLevelOrDefault(t *testing.T) {
	if got := ParseLevelOrDefault("garbage"); got != DefaultLevel {
		t.Errorf("ParseLevelOrDefault(garbage) = %v, want %v", got, DefaultLevel)
	}
	if got := ParseLevelOrDefault("debug"); got != slog.LevelDebug {
		t.Errorf("ParseLevelOrDefault(debug) = %v, want %v", got, slog.LevelDebug)
	}
}

func TestVerbosityLevel(t *testing.T) {
	tests := []struct {
		input     string
		wantLevel slog.Level
		wantOK    bool
	}{
		{"silent", LevelSilent, true},
		{"normal", slog.LevelInfo, true},
		{"verbose", slog.LevelDebug, true},
		{"VERBOSE", slog.LevelDebug, true},
		{"loud", DefaultLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := VerbosityLevel(tt.input)
			if ok != tt.wantOK || got != tt.wantLevel {
				t.Errorf("VerbosityLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.wantLevel, tt.wantOK)
			}
		})
	}

	if LevelSilent <= slog.LevelError {
		t.Error("LevelSilent must be above LevelError")
	}
}
