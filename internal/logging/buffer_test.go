package logging

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRingBufferWrapsAround(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := range 5 {
		rb.Write(LogEntry{Message: fmt.Sprint(i)})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}
	var got []string
	for _, e := range rb.ReadAll() {
		got = append(got, e.Message)
	}
	if strings.Join(got, ",") != "2,3,4" {
		t.Errorf("ReadAll() = %v, want [2 3 4]", got)
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(10)
	for i, module := range []string{"ffmpeg", "vspipe", "ffmpeg", "ffmpeg", "render"} {
		rb.Write(LogEntry{Module: module, Message: fmt.Sprint(i)})
	}

	tests := []struct {
		module string
		n      int
		want   string
	}{
		{"ffmpeg", 2, "2,3"},
		{"ffmpeg", 10, "0,2,3"},
		{"", 2, "3,4"},
		{"missing", 5, ""},
		{"ffmpeg", 0, ""},
	}
	for _, tt := range tests {
		var got []string
		for _, e := range rb.Tail(tt.module, tt.n) {
			got = append(got, e.Message)
		}
		if s := strings.Join(got, ","); s != tt.want {
			t.Errorf("Tail(%q, %d) = %q, want %q", tt.module, tt.n, s, tt.want)
		}
	}
}

func TestRingBufferReset(t *testing.T) {
	rb := NewRingBuffer(2)
	rb.Write(LogEntry{Message: "a"})
	rb.Reset()
	if rb.Count() != 0 || rb.ReadAll() != nil {
		t.Error("Reset should drop all entries")
	}
}

func TestBufferHandlerAttributes(t *testing.T) {
	rb := NewRingBuffer(4)
	logger := slog.New(NewBufferHandler(rb, slog.LevelDebug)).With("module", "render")

	logger.WithGroup("job").Warn("slow render", "elapsed", 2*time.Second, "err", fmt.Errorf("boom"))

	entries := rb.ReadAll()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Module != "render" || e.Level != "warn" {
		t.Errorf("unexpected entry header: %+v", e)
	}
	if e.Attributes["job.elapsed"] != "2s" || e.Attributes["job.err"] != "boom" {
		t.Errorf("unexpected attributes: %v", e.Attributes)
	}
}

func TestBufferHandlerLevel(t *testing.T) {
	rb := NewRingBuffer(4)
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)
	logger := slog.New(NewBufferHandler(rb, level))

	logger.Info("dropped")
	level.Set(slog.LevelInfo)
	logger.Info("kept")

	if entries := rb.ReadAll(); len(entries) != 1 || entries[0].Message != "kept" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestFormatLogLine(t *testing.T) {
	entry := LogEntry{
		Timestamp:  time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.UTC),
		Level:      "error",
		Module:     "ffmpeg",
		Message:    "Conversion failed!",
		Attributes: map[string]any{"b": 2, "a": "x"},
	}
	want := "03:04:05.600 ERROR [ffmpeg] Conversion failed! a=x b=2"
	if got := FormatLogLine(entry); got != want {
		t.Errorf("FormatLogLine() = %q, want %q", got, want)
	}
}
