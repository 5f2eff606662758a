package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// resetLogging clears all package state and routes output into a buffer.
func resetLogging(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig = Config{Level: "info", Format: "text"}
	output = &buf
	logBuffer.Reset()
	mutex.Unlock()
	return &buf
}

func TestModuleLevelOverride(t *testing.T) {
	resetLogging(t)
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"vspipe": "debug",
			"ffmpeg": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"vspipe", true, true, true},
		{"ffmpeg", false, false, true},
		{"render", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("Info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("Warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetLogging(t)

	before := GetLogger("progress")
	if before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"progress": "debug"}})

	if !before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger obtained before Initialize should pick up the new level")
	}
}

func TestLoggerWritesModuleAttribute(t *testing.T) {
	buf := resetLogging(t)

	GetLogger("cleanup").Info("removed scratch directory", "path", "/tmp/x")

	out := buf.String()
	if !strings.Contains(out, "module=cleanup") || !strings.Contains(out, "path=/tmp/x") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestLoggerFeedsRingBuffer(t *testing.T) {
	resetLogging(t)

	GetLogger("ffmpeg").Error("Conversion failed!")
	GetLogger("render").Info("unrelated")

	entries := GetBuffer().Tail("ffmpeg", 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 ffmpeg entry, got %d", len(entries))
	}
	if entries[0].Message != "Conversion failed!" || entries[0].Level != "error" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestSetModuleLevel(t *testing.T) {
	resetLogging(t)
	logger := GetLogger("watch")

	if !SetModuleLevel("watch", "debug") {
		t.Fatal("SetModuleLevel rejected a valid level")
	}
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled after SetModuleLevel")
	}
	if SetModuleLevel("watch", "loud") {
		t.Error("SetModuleLevel accepted an invalid level")
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")
	logger.Info("both")

	out := buf.String()
	if n := strings.Count(out, "debug only message"); n != 1 {
		t.Errorf("expected 1 debug message, got %d. Output: %s", n, out)
	}
	if n := strings.Count(out, "both"); n != 2 {
		t.Errorf("expected 2 info messages, got %d. Output: %s", n, out)
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			switch {
			case tt.isNil && got != nil:
				t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
			case !tt.isNil && got == nil:
				t.Errorf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
			case !tt.isNil && *got != tt.want:
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestJournalKey(t *testing.T) {
	tests := map[string][]string{
		"RENDER_ID":       {"render_id"},
		"JOB_EXIT_CODE":   {"job", "exit_code"},
		"OUTPUT_PATH_MP4": {"output.path-mp4"},
	}
	for want, parts := range tests {
		if got := journalKey(parts); got != want {
			t.Errorf("journalKey(%v) = %q, want %q", parts, got, want)
		}
	}
}
