// Package ffmpeg builds transcoder argument vectors and parses its log output.
package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// BuildArgs builds the ffmpeg argument vector from structured parameters.
// The executable itself is not included.
func BuildArgs(p *Params) []string {
	args := []string{
		"-loglevel", "level+error",
		"-hide_banner",
		"-nostats",
		"-i", p.VideoInput,
		"-i", p.AudioSource,
		"-map", "0:v",
		"-map", "1:a?",
	}

	if p.AudioFilters != "" {
		args = append(args, "-af", p.AudioFilters)
	}

	if len(p.CustomArgs) > 0 {
		args = append(args, p.CustomArgs...)
	} else {
		args = append(args, p.VideoArgs...)
		args = append(args, "-c:a", p.AudioCodec, "-b:a", p.AudioBitrate)
		if p.FastStart {
			args = append(args, "-movflags", "+faststart")
		}
	}

	if p.Format != "" {
		args = append(args, "-f", p.Format)
	}
	return append(args, p.Output)
}

// AudioFilterChain returns the audio filters that keep sound in sync with the
// input and output timescales, or "" when both are 1.
//
// The input timescale is undone with asetrate, which shifts pitch. The output
// timescale uses atempo to keep pitch unless adjustPitch asks for asetrate.
func AudioFilterChain(inputScale, outputScale float64, adjustPitch bool) string {
	var filters []string

	if inputScale != 1.0 {
		filters = append(filters, "asetrate="+strconv.Itoa(AudioSampleRate)+"*"+FormatNumber(1.0/inputScale))
	}

	if outputScale != 1.0 {
		if adjustPitch {
			filters = append(filters, "asetrate="+strconv.Itoa(AudioSampleRate)+"*"+FormatNumber(outputScale))
		} else {
			filters = append(filters, "atempo="+FormatNumber(outputScale))
		}
	}

	return strings.Join(filters, ",")
}

// FormatNumber formats v with the fewest digits that round-trip, so 2.0
// becomes "2" and 0.5 stays "0.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SplitArgs splits a user supplied argument string the way a POSIX shell
// would, without expanding variables or commands. Shell operators such as
// ';' or '|' outside quotes are rejected.
func SplitArgs(s string) ([]string, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(s)
	if err != nil {
		return nil, err
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("unsupported shell operator at offset %d", parser.Position)
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}
