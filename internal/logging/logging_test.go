package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"DEBUG", LevelDebug, false},
		{"  Info ", LevelInfo, false},
		{"", DefaultLevel, true},
		{"verbose", DefaultLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected LogLevel
	}{
		{"default", map[string]string{}, DefaultLevel},
		{"DEBUG wins", map[string]string{"DEBUG": "true", "LOG_LEVEL": "error"}, LevelDebug},
		{"thumbq specific", map[string]string{"THUMBQ_LOG_LEVEL": "info", "LOG_LEVEL": "error"}, LevelInfo},
		{"generic", map[string]string{"LOG_LEVEL": "error"}, LevelError},
		{"invalid falls through", map[string]string{"THUMBQ_LOG_LEVEL": "loud", "LOG_LEVEL": "debug"}, LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"DEBUG", "THUMBQ_LOG_LEVEL", "LOG_LEVEL"} {
				t.Setenv(name, tt.env[name])
			}
			if got := levelFromEnv(); got != tt.expected {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)
	before := GetLevel()
	defer SetLevel(before)

	SetLevel(LevelWarn)
	Debug("hidden debug")
	Info("hidden info")
	Warn("shown %s", "warning")
	Error("shown error %d", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below level leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown warning") {
		t.Errorf("missing warning in %q", out)
	}
	if !strings.Contains(out, "[ERROR] shown error 7") {
		t.Errorf("missing error in %q", out)
	}

	buf.Reset()
	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false after SetLevel(LevelDebug)")
	}
	Debug("now visible")
	if !strings.Contains(buf.String(), "[DEBUG] now visible") {
		t.Errorf("missing debug line in %q", buf.String())
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
