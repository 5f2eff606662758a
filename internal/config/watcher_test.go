package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatcher(t *testing.T, w *Watcher[Settings]) {
	t.Helper()
	if err := w.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})
	// Give fsnotify a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_ReloadsSettings(t *testing.T) {
	path := writeFile(t, "blur.toml", "[encoding]\nquality = 20\n")

	received := make(chan Settings, 1)
	w := NewWatcher(path, LoadSettings, newTestLogger(), WithDebounce[Settings](50*time.Millisecond))
	w.OnReload(func(s Settings) { received <- s })
	startWatcher(t, w)

	if err := os.WriteFile(path, []byte("[encoding]\nquality = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case s := <-received:
		if s.Encoding.Quality != 30 {
			t.Errorf("Quality = %d, want 30", s.Encoding.Quality)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for settings reload")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	path := writeFile(t, "blur.toml", "[encoding]\nquality = 20\n")

	var calls atomic.Int32
	w := NewWatcher(path, LoadSettings, newTestLogger(), WithDebounce[Settings](20*time.Millisecond))
	w.OnReload(func(Settings) { calls.Add(1) })
	startWatcher(t, w)

	sibling := filepath.Join(filepath.Dir(path), "other.toml")
	if err := os.WriteFile(sibling, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("handler called %d times for unrelated file", got)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	path := writeFile(t, "blur.toml", "[encoding]\nquality = 1\n")

	var calls atomic.Int32
	var last atomic.Int32
	w := NewWatcher(path, LoadSettings, newTestLogger(), WithDebounce[Settings](150*time.Millisecond))
	w.OnReload(func(s Settings) {
		calls.Add(1)
		last.Store(int32(s.Encoding.Quality))
	})
	startWatcher(t, w)

	for q := 2; q <= 5; q++ {
		content := []byte("[encoding]\nquality = " + string(rune('0'+q)) + "\n")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(400 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("last quality = %d, want 5", got)
	}
}

func TestWatcher_ErrorHandlerAndUnsubscribe(t *testing.T) {
	path := writeFile(t, "blur.toml", "[encoding]\nquality = 20\n")

	errs := make(chan error, 1)
	var calls atomic.Int32
	w := NewWatcher(path, LoadSettings, newTestLogger(),
		WithDebounce[Settings](50*time.Millisecond),
		WithErrorHandler[Settings](func(err error) { errs <- err }),
	)
	unsubscribe := w.OnReload(func(Settings) { calls.Add(1) })
	unsubscribe()
	startWatcher(t, w)

	if err := os.WriteFile(path, []byte("[encoding\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected a load error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}

	if err := os.WriteFile(path, []byte("[encoding]\nquality = 21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("unsubscribed handler called %d times", got)
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := NewWatcher("blur.toml", func(string) (Settings, error) {
		return Settings{}, errors.New("unused")
	}, newTestLogger())
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start = %v, want nil", err)
	}
}
