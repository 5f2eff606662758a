package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// InstallerMarker is the file the bundled installer drops next to the binary.
const InstallerMarker = ".teres-installer"

// Default executable names looked up on PATH.
const (
	DefaultSourceExe     = "vspipe"
	DefaultTranscoderExe = "ffmpeg"
)

// Executables names the two pipeline programs.
type Executables struct {
	Source     string `toml:"vspipe"`
	Transcoder string `toml:"ffmpeg"`
}

// InstallerDetector reports the directory of the running binary and whether
// the bundled installer layout is in use there.
type InstallerDetector func() (exeDir string, installed bool, err error)

// DetectInstaller looks for InstallerMarker beside the running binary.
func DetectInstaller() (string, bool, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", false, fmt.Errorf("locate running binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)

	_, err = os.Stat(filepath.Join(dir, InstallerMarker))
	switch {
	case err == nil:
		return dir, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return dir, false, nil
	default:
		return "", false, fmt.Errorf("check installer marker: %w", err)
	}
}

// NoInstaller is an InstallerDetector for environments without the bundle.
func NoInstaller() (string, bool, error) {
	return "", false, nil
}

// ResolveExecutables picks the executables to run. Non-empty overrides win;
// otherwise the bundled copies are used when the installer layout is
// detected, and bare names otherwise.
func ResolveExecutables(detect InstallerDetector, overrides Executables) (Executables, error) {
	exes := Executables{Source: DefaultSourceExe, Transcoder: DefaultTranscoderExe}

	if overrides.Source == "" || overrides.Transcoder == "" {
		if detect == nil {
			detect = DetectInstaller
		}
		dir, installed, err := detect()
		if err != nil {
			return Executables{}, err
		}
		if installed {
			exes.Source = filepath.Join(dir, "lib", "vapoursynth", "VSPipe.exe")
			exes.Transcoder = filepath.Join(dir, "lib", "ffmpeg", "ffmpeg.exe")
		}
	}

	if overrides.Source != "" {
		exes.Source = overrides.Source
	}
	if overrides.Transcoder != "" {
		exes.Transcoder = overrides.Transcoder
	}
	return exes, nil
}
