package render

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/ffmpeg"
)

// OutputSuffix is appended to the source stem for the default output name.
const OutputSuffix = "_blur"

// DefaultOutputPath returns "<dir>/<stem>_blur.<container>" for videoPath.
func DefaultOutputPath(videoPath, container string) string {
	dir, stem, _ := splitName(videoPath)
	return filepath.Join(dir, stem+OutputSuffix+"."+strings.TrimPrefix(container, "."))
}

// UsesDetailedName reports whether the output name embeds the blur
// parameters. It needs both interpolation and blending.
func UsesDetailedName(s config.Settings) bool {
	return s.Encoding.DetailedFilename && s.Interpolation.Enabled && s.Blending.Enabled
}

// DetailedOutputPath rewrites outputPath's base name to
// "<stem>-<ifps>fps-<program>~<bfps>fps-<amount><ext>".
func DetailedOutputPath(outputPath string, s config.Settings) string {
	dir, stem, ext := splitName(outputPath)
	name := stem +
		"-" + strconv.Itoa(s.Interpolation.FPS) + "fps" +
		"-" + s.Advanced.Interpolation.Program +
		"~" + strconv.Itoa(s.Blending.OutputFPS) + "fps" +
		"-" + ffmpeg.FormatNumber(s.Blending.Amount)
	return filepath.Join(dir, name+ext)
}

func splitName(path string) (dir, stem, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	return filepath.Dir(path), strings.TrimSuffix(base, ext), ext
}

// validFileName reports whether path has a usable file name component.
func validFileName(path string) bool {
	if path == "" || strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return false
	}
	switch filepath.Base(path) {
	case ".", "..", string(filepath.Separator):
		return false
	}
	return true
}
