package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/teres/internal/render"
)

func TestRunCheck(t *testing.T) {
	env := Env{
		SettingsPath: filepath.Join(t.TempDir(), "missing.toml"),
		Executables:  render.Executables{Source: "/opt/vs/vspipe", Transcoder: "/opt/ff/ffmpeg"},
		ScratchDir:   "/scratch",
	}

	var out bytes.Buffer
	if err := runCheck(&out, env, []string{"/videos/clip.mp4"}, true); err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"Settings OK",
		"Frame server: /opt/vs/vspipe",
		"clip.mp4 -> " + filepath.FromSlash("/videos/clip_blur.mp4"),
		"/opt/vs/vspipe " + filepath.Join("/scratch", "teres-<id>", "blur.vpy") + " - -p -c y4m |",
		"/opt/ff/ffmpeg -loglevel level+error",
		"set_output",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunCheckInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("[encoding]\nquality = 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runCheck(&bytes.Buffer{}, Env{SettingsPath: path}, nil, false)
	if err == nil || !strings.Contains(err.Error(), "encoding.quality") {
		t.Errorf("runCheck() error = %v, want quality validation error", err)
	}
}

func TestSplitInputs(t *testing.T) {
	got := SplitInputs([]string{"a.mp4,b.mp4", " c.mp4 ", ",,", "d e.mp4"})
	want := []string{"a.mp4", "b.mp4", "c.mp4", "d e.mp4"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("SplitInputs() = %q, want %q", got, want)
	}
}
