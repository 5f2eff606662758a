// Package cleanup removes the intermediate files a render leaves behind.
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/smazurov/teres/internal/logging"
)

// IndexSuffix is appended to the source video's file name by the frame
// server's indexer.
const IndexSuffix = ".ffindex"

// Error reports an unexpected filesystem state during cleanup.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cleanup %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IndexPath returns the index sidecar path for videoPath.
func IndexPath(videoPath string) string {
	return filepath.Join(filepath.Dir(videoPath), filepath.Base(videoPath)+IndexSuffix)
}

// Clean removes the generated script and the video's index sidecar.
//
// When the script is the only entry in its directory the whole directory is
// removed, otherwise only the script. A missing sidecar is not an error.
func Clean(videoPath, scriptPath string) error {
	logger := logging.GetLogger("cleanup")
	logger.Debug("Cleaning temp files", "script", scriptPath)

	dir := filepath.Dir(scriptPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &Error{Op: "read", Path: dir, Err: err}
	}

	if len(entries) <= 1 {
		if err := os.RemoveAll(dir); err != nil {
			return &Error{Op: "remove", Path: dir, Err: err}
		}
		logger.Debug("Removed temp directory", "path", dir)
	} else {
		if err := os.Remove(scriptPath); err != nil {
			return &Error{Op: "remove", Path: scriptPath, Err: err}
		}
		logger.Debug("Removed temp file", "path", scriptPath)
	}

	return RemoveIndex(videoPath)
}

// RemoveIndex deletes the index sidecar of videoPath if it exists.
func RemoveIndex(videoPath string) error {
	index := IndexPath(videoPath)
	if err := os.Remove(index); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Op: "remove", Path: index, Err: err}
	}
	return nil
}

// ScratchDir is a directory owned by exactly one render.
type ScratchDir struct {
	path string
}

// NewScratchDir creates a uniquely named directory under base. An empty base
// uses the system temp directory.
func NewScratchDir(base string) (*ScratchDir, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, &Error{Op: "create", Path: base, Err: err}
	}

	path := filepath.Join(base, "teres-"+uuid.NewString())
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, &Error{Op: "create", Path: path, Err: err}
	}
	return &ScratchDir{path: path}, nil
}

// Path returns the directory path.
func (d *ScratchDir) Path() string {
	return d.path
}

// Join returns name inside the directory.
func (d *ScratchDir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Release removes the directory and everything in it. It is safe to call
// more than once.
func (d *ScratchDir) Release() error {
	if err := os.RemoveAll(d.path); err != nil {
		return &Error{Op: "remove", Path: d.path, Err: err}
	}
	return nil
}
