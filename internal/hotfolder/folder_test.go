package hotfolder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAccepts(t *testing.T) {
	f := New(t.TempDir(), newTestLogger(),
		WithExtensions("MP4", ".mkv"),
		WithIgnore(func(name string) bool { return strings.Contains(name, "_blur") }))

	tests := []struct {
		name string
		want bool
	}{
		{"clip.mp4", true},
		{"CLIP.MP4", true},
		{"clip.mkv", true},
		{"clip.mov", false},
		{"clip_blur.mp4", false},
		{".clip.mp4", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := f.Accepts(tt.name); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.mkv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := New(dir, newTestLogger()).Existing()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.mkv"), filepath.Join(dir, "b.mp4")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Existing() = %v, want %v", got, want)
	}
}

func TestRunReportsSettledFile(t *testing.T) {
	dir := t.TempDir()
	f := New(dir, newTestLogger(), WithSettle(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	found := make(chan string, 4)
	errc := make(chan error, 1)
	go func() { errc <- f.Run(ctx, func(path string) { found <- path }) }()
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "clip.mp4")
	for i := range 3 {
		if err := os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-found:
		if got != path {
			t.Errorf("found %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settled file")
	}

	select {
	case extra := <-found:
		t.Errorf("file reported more than once or unexpected file: %q", extra)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRunMissingDir(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "missing"), newTestLogger())
	if err := f.Run(context.Background(), func(string) {}); err == nil {
		t.Error("expected error for missing directory")
	}
}
