package render

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/smazurov/teres/internal/cleanup"
	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/script"
)

// Request is one queued render. It is not modified after construction.
type Request struct {
	ID          string
	VideoPath   string
	VideoFolder string
	ScriptPath  string
	OutputPath  string
	Settings    config.Settings
	Stdout      bool

	// scratch is set when the request owns the script's directory.
	scratch *cleanup.ScratchDir
}

// NewRequest prepares a render of videoPath: it resolves the output path
// and writes the frame server script into a fresh scratch directory under
// scratchBase (the system temp directory when empty).
func NewRequest(videoPath string, s config.Settings, stdout bool, scratchBase string) (*Request, error) {
	req, err := newRequest(videoPath, s, stdout)
	if err != nil {
		return nil, err
	}

	dir, err := cleanup.NewScratchDir(scratchBase)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidPath, "failed to create scratch directory", err)
	}
	scriptPath, err := script.WriteFile(dir, req.VideoPath, s)
	if err != nil {
		_ = dir.Release()
		return nil, NewRenderError(ErrCodeInvalidPath, "failed to write script", err)
	}

	req.ScriptPath = scriptPath
	req.scratch = dir
	return req, nil
}

// NewRequestWithScript creates a request for a script written elsewhere.
// Cleanup then uses the directory-contents check instead of a scratch
// directory.
func NewRequestWithScript(videoPath, scriptPath string, s config.Settings, stdout bool) (*Request, error) {
	req, err := newRequest(videoPath, s, stdout)
	if err != nil {
		return nil, err
	}
	if !validFileName(scriptPath) {
		return nil, NewRenderError(ErrCodeInvalidPath, "script path has no file name: "+scriptPath, nil)
	}
	req.ScriptPath = scriptPath
	return req, nil
}

func newRequest(videoPath string, s config.Settings, stdout bool) (*Request, error) {
	if !validFileName(videoPath) {
		return nil, NewRenderError(ErrCodeInvalidPath, "video path has no file name: "+videoPath, nil)
	}
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidPath, fmt.Sprintf("failed to resolve %q", videoPath), err)
	}

	return &Request{
		ID:          uuid.NewString(),
		VideoPath:   abs,
		VideoFolder: filepath.Dir(abs),
		OutputPath:  DefaultOutputPath(abs, s.Encoding.Container),
		Settings:    s,
		Stdout:      stdout,
	}, nil
}

// Name returns the video's file name.
func (r *Request) Name() string {
	return filepath.Base(r.VideoPath)
}

// Equal reports whether both requests render the same video.
func (r *Request) Equal(other *Request) bool {
	return other != nil && r.VideoPath == other.VideoPath
}

// Cleanup removes the script and the video's index sidecar after a
// successful render.
func (r *Request) Cleanup() error {
	if r.scratch == nil {
		return cleanup.Clean(r.VideoPath, r.ScriptPath)
	}
	if err := r.scratch.Release(); err != nil {
		return err
	}
	return cleanup.RemoveIndex(r.VideoPath)
}

// Discard releases the scratch directory of a request that will not run.
func (r *Request) Discard() error {
	if r.scratch == nil {
		return nil
	}
	return r.scratch.Release()
}
