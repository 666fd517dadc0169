package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testSettings() *Settings {
	return &Settings{
		IndexDir: "/tmp/washer_index",
		LogLevel: "debug",
		Color:    ColorNever,
		Index: IndexSettings{
			Languages:      []string{"en", "pt"},
			Encodings:      []string{"utf-8", "windows-1252"},
			MaxStopwords:   500,
			MaxTokenLength: 40,
			LockTimeout:    10 * time.Second,
		},
		Search: SearchSettings{
			Limit:           10,
			DefaultOperator: "and",
			MoreLikeTerms:   10,
			TopTerms:        10,
		},
		Highlight: HighlightSettings{
			Fragments:    5,
			FragmentSize: 200,
			LineBreak:    "¶ ",
		},
	}
}

func TestLog(t *testing.T) {
	// Just verify it doesn't panic
	Log(testSettings())
}

func TestLogWithLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogWithLogger(testSettings(), logger)

	output := buf.String()
	for _, key := range []string{"index_dir", "index.languages", "search.default_operator", "highlight.line_break"} {
		if !strings.Contains(output, "Config: "+key) {
			t.Errorf("Expected 'Config: %s' in log output", key)
		}
	}
	if !strings.Contains(output, "[en pt]") {
		t.Errorf("Expected languages in log output, got: %s", output)
	}
}

func TestLogWithLogger_QuietAtDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogWithLogger(testSettings(), logger)

	if buf.Len() != 0 {
		t.Errorf("Expected no output at info level, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Error("Expected info record to be filtered")
	}
	if !strings.Contains(output, "shown") {
		t.Error("Expected warn record in output")
	}
}

func TestSettingsLogValue(t *testing.T) {
	val := SettingsLogValue(*testSettings())
	if val.Kind() != slog.KindGroup {
		t.Errorf("Expected group kind, got %v", val.Kind())
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("settings", "settings", val)

	if !strings.Contains(buf.String(), "settings.search.limit=10") {
		t.Errorf("Expected nested search limit in output, got: %s", buf.String())
	}
}
