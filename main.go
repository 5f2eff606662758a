package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/teres/cmd"
	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/render"
	"github.com/smazurov/teres/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"teres.toml"`

	// Render settings
	Settings string `help:"Render settings file" short:"s" default:"settings.toml" toml:"render.settings" env:"SETTINGS"`
	Stdout   bool   `help:"Stream the render to stdout as NUT instead of writing a file" toml:"render.stdout" env:"STDOUT"`
	Noui     bool   `help:"Disable interactive output and report progress in the log" toml:"render.noui" env:"NOUI"`

	ScratchDir      string `help:"Directory for per-render scripts (system temp dir when empty)" toml:"render.scratch_dir" env:"SCRATCH_DIR"`
	GracefulTimeout string `help:"Time to wait after SIGINT before killing the pipeline" default:"5s" toml:"render.graceful_timeout" env:"GRACEFUL_TIMEOUT"`
	ReportLines     int    `help:"Lines of stage output shown when a render fails" default:"20" toml:"render.report_lines" env:"REPORT_LINES"`

	// Executable overrides
	VspipePath string `help:"Frame server executable (default: bundled or vspipe on PATH)" toml:"executables.vspipe" env:"VSPIPE_PATH"`
	FfmpegPath string `help:"Transcoder executable (default: bundled or ffmpeg on PATH)" toml:"executables.ffmpeg" env:"FFMPEG_PATH"`

	// Metrics settings
	MetricsTextfile string `help:"Write Prometheus metrics to this file after rendering" toml:"metrics.textfile" env:"METRICS_TEXTFILE"`
	MetricsAddr     string `help:"Serve Prometheus metrics on this address while rendering" toml:"metrics.addr" env:"METRICS_ADDR"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingJournal  bool   `help:"Also log to the systemd journal when available" toml:"logging.journal" env:"LOGGING_JOURNAL"`
	LoggingFfmpeg   string `help:"Transcoder output logging level" default:"info" toml:"logging.ffmpeg" env:"LOGGING_FFMPEG"`
	LoggingVspipe   string `help:"Frame server output logging level" default:"info" toml:"logging.vspipe" env:"LOGGING_VSPIPE"`
	LoggingProgress string `help:"Progress logging level" default:"info" toml:"logging.progress" env:"LOGGING_PROGRESS"`
	LoggingRender   string `help:"Render logging level" default:"info" toml:"logging.render" env:"LOGGING_RENDER"`
	LoggingProcess  string `help:"Process logging level" default:"info" toml:"logging.process" env:"LOGGING_PROCESS"`
	LoggingWatch    string `help:"Hot folder logging level" default:"info" toml:"logging.watch" env:"LOGGING_WATCH"`
}

func (o *Options) env(logger *slog.Logger) cmd.Env {
	graceful, err := time.ParseDuration(o.GracefulTimeout)
	if err != nil {
		logger.Warn("Invalid graceful timeout, using default", "value", o.GracefulTimeout, "error", err)
		graceful = 0
	}
	return cmd.Env{
		SettingsPath: o.Settings,
		Executables: render.Executables{
			Source:     o.VspipePath,
			Transcoder: o.FfmpegPath,
		},
		ScratchDir:      o.ScratchDir,
		Stdout:          o.Stdout,
		NoUI:            o.Noui,
		GracefulTimeout: graceful,
		MetricsTextfile: o.MetricsTextfile,
		MetricsAddr:     o.MetricsAddr,
		ReportLines:     o.ReportLines,
	}
}

func main() {
	var (
		cli      humacli.CLI
		env      cmd.Env
		inputs   []string
		exitCode = cmd.ExitOK
	)

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:   opts.LoggingLevel,
			Format:  opts.LoggingFormat,
			Journal: opts.LoggingJournal,
			Modules: map[string]string{
				"ffmpeg":   opts.LoggingFfmpeg,
				"vspipe":   opts.LoggingVspipe,
				"progress": opts.LoggingProgress,
				"render":   opts.LoggingRender,
				"process":  opts.LoggingProcess,
				"watch":    opts.LoggingWatch,
			},
		})

		logger := logging.GetLogger("main")
		env = opts.env(logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			defer close(done)
			defer cancel()
			logger.Debug("Starting render run", "version", version.Version, "inputs", len(inputs))
			exitCode = cmd.RunRender(ctx, env, inputs)
		})

		hooks.OnStop(func() {
			logger.Info("Interrupted, stopping render")
			cancel()
			<-done
		})
	})

	root := cli.Root()
	root.Use = "teres [flags] video[,video...]"
	root.Short = "Render motion blur through vspipe and ffmpeg"
	root.Version = version.String()
	root.Args = cobra.ArbitraryArgs
	if run := root.Run; run != nil {
		root.Run = func(c *cobra.Command, args []string) {
			inputs = args
			run(c, args)
		}
	}

	envFunc := func() cmd.Env { return env }
	root.AddCommand(cmd.CreateCheckCmd(envFunc))
	root.AddCommand(cmd.CreateWatchCmd(envFunc))

	// Run the CLI
	cli.Run()
	os.Exit(exitCode)
}
