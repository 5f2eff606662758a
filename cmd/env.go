// Package cmd implements the teres subcommands and the batch render run.
package cmd

import (
	"time"

	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/ffmpeg"
	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/process"
	"github.com/smazurov/teres/internal/render"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitError         = 1
	ExitRenderFailure = 70 // EX_SOFTWARE
	ExitInterrupted   = 130
)

// Env is the resolved root configuration shared by every command.
type Env struct {
	SettingsPath    string
	Executables     render.Executables
	ScratchDir      string
	Stdout          bool
	NoUI            bool
	GracefulTimeout time.Duration
	MetricsTextfile string
	MetricsAddr     string
	ReportLines     int
}

// EnvFunc returns the root configuration once flags are parsed.
type EnvFunc func() Env

// LoadSettings loads and validates the render settings.
func (e Env) LoadSettings() (config.Settings, error) {
	return config.LoadSettings(e.SettingsPath)
}

// NewBuilder creates the command builder for the configured executables.
func (e Env) NewBuilder() *render.CommandBuilder {
	return render.NewCommandBuilder(render.DetectInstaller, e.Executables)
}

// NewPipeline creates the two-stage executor with per-stage loggers.
func (e Env) NewPipeline() *process.Pipeline {
	opts := []process.Option{
		process.WithSourceLogger(logging.GetLogger(render.SourceModule)),
		process.WithTranscoderLog(logging.GetLogger(render.TranscoderModule), ffmpeg.ParseLogLevel),
	}
	if e.NoUI {
		opts = append(opts, process.WithInteractive(false))
	}
	if e.GracefulTimeout > 0 {
		opts = append(opts, process.WithTimeouts(e.GracefulTimeout, e.GracefulTimeout))
	}
	return process.NewPipeline(logging.GetLogger("process"), opts...)
}

// NewRenderer wires builder, pipeline and bus into a renderer.
func (e Env) NewRenderer(bus *events.Bus) *render.Renderer {
	return render.NewRenderer(e.NewBuilder(), e.NewPipeline(), render.WithEvents(bus))
}
