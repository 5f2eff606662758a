package cleanup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestCleanRemovesDirectoryWhenScriptIsAlone(t *testing.T) {
	root := t.TempDir()
	scratch := filepath.Join(root, "job")
	if err := os.Mkdir(scratch, 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(scratch, "script.vpy")
	writeFile(t, script)
	video := filepath.Join(root, "clip.mp4")
	writeFile(t, video)

	if err := Clean(video, script); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if exists(scratch) {
		t.Error("scratch directory should be removed")
	}
	if !exists(video) {
		t.Error("source video must not be touched")
	}
}

func TestCleanRemovesOnlyScriptWhenDirectoryIsShared(t *testing.T) {
	root := t.TempDir()
	script := filepath.Join(root, "script.vpy")
	other := filepath.Join(root, "other.tmp")
	writeFile(t, script)
	writeFile(t, other)

	if err := Clean(filepath.Join(root, "clip.mp4"), script); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if exists(script) {
		t.Error("script should be removed")
	}
	if !exists(other) || !exists(root) {
		t.Error("other files and the directory should remain")
	}
}

func TestCleanRemovesIndexSidecar(t *testing.T) {
	root := t.TempDir()
	scratch := t.TempDir()
	script := filepath.Join(scratch, "script.vpy")
	writeFile(t, script)
	video := filepath.Join(root, "clip.final.mkv")
	index := filepath.Join(root, "clip.final.mkv.ffindex")
	writeFile(t, index)

	if err := Clean(video, script); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if exists(index) {
		t.Error("index sidecar should be removed")
	}
}

func TestCleanIndexFailureIsReported(t *testing.T) {
	root := t.TempDir()
	scratch := t.TempDir()
	script := filepath.Join(scratch, "script.vpy")
	writeFile(t, script)
	video := filepath.Join(root, "clip.mp4")

	// a non-empty directory in place of the sidecar cannot be removed with Remove
	index := IndexPath(video)
	if err := os.Mkdir(index, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(index, "keep"))

	err := Clean(video, script)
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if cerr.Path != index || cerr.Op != "remove" {
		t.Errorf("unexpected error: %v", cerr)
	}
}

func TestCleanMissingScriptDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "script.vpy")

	err := Clean("/videos/clip.mp4", missing)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestScratchDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested")

	a, err := NewScratchDir(base)
	if err != nil {
		t.Fatalf("NewScratchDir() error = %v", err)
	}
	b, err := NewScratchDir(base)
	if err != nil {
		t.Fatalf("NewScratchDir() error = %v", err)
	}
	if a.Path() == b.Path() {
		t.Fatal("scratch directories must be unique")
	}
	if !strings.HasPrefix(filepath.Base(a.Path()), "teres-") {
		t.Errorf("unexpected name %q", a.Path())
	}

	writeFile(t, a.Join("script.vpy"))
	writeFile(t, a.Join("extra.tmp"))

	if err := a.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if exists(a.Path()) {
		t.Error("Release should remove the directory regardless of contents")
	}
	if err := a.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
	if !exists(b.Path()) {
		t.Error("releasing one scratch dir must not affect another")
	}
}

func TestRemoveIndexMissingIsNotAnError(t *testing.T) {
	if err := RemoveIndex(filepath.Join(t.TempDir(), "clip.mp4")); err != nil {
		t.Errorf("RemoveIndex() error = %v", err)
	}
}

func TestIndexPath(t *testing.T) {
	got := IndexPath(filepath.Join("videos", "my.clip.mp4"))
	want := filepath.Join("videos", "my.clip.mp4.ffindex")
	if got != want {
		t.Errorf("IndexPath() = %q, want %q", got, want)
	}
}
