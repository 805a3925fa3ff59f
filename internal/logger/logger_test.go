package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetup_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "info")

	logger.Info("server started", slog.String("port", "8080"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["port"] != "8080" {
		t.Errorf("port = %v", entry["port"])
	}
}

func TestSetup_DebugLevelSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "info")

	logger.Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("debug log should be suppressed at info level, got: %s", buf.String())
	}
}

func TestSetup_DebugLevelEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, "debug")

	logger.Debug("visible")

	if buf.Len() == 0 {
		t.Error("debug log should be emitted at debug level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
