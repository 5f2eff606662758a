package render

import (
	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/encoders"
	"github.com/smazurov/teres/internal/ffmpeg"
	"github.com/smazurov/teres/internal/process"
)

// StreamFormat is the muxer used when streaming to stdout.
const StreamFormat = "nut"

// SourceArgs returns the frame server arguments for scriptPath: raw y4m on
// stdout with progress on stderr.
func SourceArgs(scriptPath string) []string {
	return []string{scriptPath, "-", "-p", "-c", "y4m"}
}

// CommandWithArgs is both pipeline stages plus the name the output ends up
// with, which differs from the requested path in detailed-name and stream
// modes.
type CommandWithArgs struct {
	process.Stages
	OutputName string
}

// CommandBuilder turns paths and settings into pipeline commands.
type CommandBuilder struct {
	detect    InstallerDetector
	overrides Executables
}

// NewCommandBuilder creates a builder. A nil detector uses DetectInstaller.
func NewCommandBuilder(detect InstallerDetector, overrides Executables) *CommandBuilder {
	if detect == nil {
		detect = DetectInstaller
	}
	return &CommandBuilder{detect: detect, overrides: overrides}
}

// Build returns the commands that render scriptPath for videoPath into
// outputPath, or into stdout when stdout is set.
func (b *CommandBuilder) Build(scriptPath, videoPath, outputPath string, s config.Settings, stdout bool) (*CommandWithArgs, error) {
	if !validFileName(videoPath) {
		return nil, NewRenderError(ErrCodeInvalidPath, "video path has no file name: "+videoPath, nil)
	}
	if !validFileName(outputPath) {
		return nil, NewRenderError(ErrCodeInvalidPath, "output path has no file name: "+outputPath, nil)
	}

	exes, err := ResolveExecutables(b.detect, b.overrides)
	if err != nil {
		return nil, NewRenderError(ErrCodeLaunchFailed, "failed to resolve executables", err)
	}

	params := &ffmpeg.Params{
		VideoInput:   "-",
		AudioSource:  videoPath,
		AudioFilters: ffmpeg.AudioFilterChain(s.Timescale.Input, s.Timescale.Output, s.Timescale.AdjustAudioPitch),
		AudioCodec:   ffmpeg.DefaultAudioCodec,
		AudioBitrate: ffmpeg.DefaultAudioBitrate,
		FastStart:    true,
	}

	if s.HasCustomFilters() {
		custom, err := ffmpeg.SplitArgs(s.Advanced.Encoding.CustomFFmpegFilters)
		if err != nil {
			return nil, NewRenderError(ErrCodeInvalidSettings, "invalid custom ffmpeg filters", err)
		}
		params.CustomArgs = custom
	} else {
		params.VideoArgs = encoders.VideoArgs(encoders.Request{
			GPU:     s.Advanced.Encoding.GPU,
			GPUType: s.Advanced.Encoding.GPUType,
			Quality: s.Encoding.Quality,
			Stdout:  stdout,
		})
	}

	switch {
	case UsesDetailedName(s):
		params.Output = DetailedOutputPath(outputPath, s)
	case stdout:
		params.Format = StreamFormat
		params.Output = "-"
	default:
		params.Output = outputPath
	}

	return &CommandWithArgs{
		Stages: process.Stages{
			Source:     process.Command{Exe: exes.Source, Args: SourceArgs(scriptPath)},
			Transcoder: process.Command{Exe: exes.Transcoder, Args: ffmpeg.BuildArgs(params)},
		},
		OutputName: params.Output,
	}, nil
}
