// Package script writes the VapourSynth script the frame server renders.
package script

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/smazurov/teres/internal/cleanup"
	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/ffmpeg"
)

// FileName is the script's name inside its scratch directory.
const FileName = "blur.vpy"

//go:embed templates/blur.vpy.tmpl
var templates embed.FS

var blurTemplate = template.Must(
	template.New("blur.vpy.tmpl").
		Funcs(template.FuncMap{"pystr": strconv.Quote}).
		ParseFS(templates, "templates/blur.vpy.tmpl"),
)

type scriptData struct {
	VideoPath string

	SlowInput   bool
	InputFactor string

	Interpolate      bool
	InterpolationFPS int
	Program          string

	Blend     bool
	OutputFPS int
	Amount    string

	ScaleOutput  bool
	OutputFactor string
}

func newScriptData(videoPath string, s config.Settings) scriptData {
	return scriptData{
		VideoPath:        videoPath,
		SlowInput:        s.Timescale.Input != 1.0,
		InputFactor:      ffmpeg.FormatNumber(1.0 / s.Timescale.Input),
		Interpolate:      s.Interpolation.Enabled,
		InterpolationFPS: s.Interpolation.FPS,
		Program:          strings.ToLower(s.Advanced.Interpolation.Program),
		Blend:            s.Blending.Enabled,
		OutputFPS:        s.Blending.OutputFPS,
		Amount:           ffmpeg.FormatNumber(s.Blending.Amount),
		ScaleOutput:      s.Timescale.Output != 1.0,
		OutputFactor:     ffmpeg.FormatNumber(s.Timescale.Output),
	}
}

// Generate renders the script for videoPath into w.
func Generate(w io.Writer, videoPath string, s config.Settings) error {
	if err := blurTemplate.Execute(w, newScriptData(videoPath, s)); err != nil {
		return fmt.Errorf("render script template: %w", err)
	}
	return nil
}

// WriteFile writes the script for videoPath into dir and returns its path.
func WriteFile(dir *cleanup.ScratchDir, videoPath string, s config.Settings) (string, error) {
	path := dir.Join(FileName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create script: %w", err)
	}
	if err := Generate(f, videoPath, s); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}
	return path, nil
}
