package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/teres/internal/api"
	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/hotfolder"
	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/metrics"
	"github.com/smazurov/teres/internal/metrics/exporters"
	"github.com/smazurov/teres/internal/render"
	"github.com/smazurov/teres/internal/systemd"
)

// WatchOptions configures the hot folder.
type WatchOptions struct {
	Dir          string
	Extensions   []string
	Settle       time.Duration
	Existing     bool
	Listen       string
	AuthUsername string
	AuthPassword string
}

// CreateWatchCmd creates the watch command, which renders every video
// dropped into a folder.
func CreateWatchCmd(env EnvFunc) *cobra.Command {
	opts := WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Render videos as they appear in a folder",
		Long: `Watches a folder and queues every new video once it stops growing. Videos are rendered one at a time ` +
			`next to their source. The settings file is reloaded when it changes; later renders use the new values.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			opts.Dir = "."
			if len(args) == 1 {
				opts.Dir = args[0]
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := RunWatch(ctx, env(), opts); err != nil {
				logging.GetLogger("watch").Error("Watch failed", "error", err)
				os.Exit(ExitError)
			}
		},
	}

	cmd.Flags().StringSliceVar(&opts.Extensions, "ext", hotfolder.DefaultExtensions, "Video file extensions to pick up")
	cmd.Flags().DurationVar(&opts.Settle, "settle", 2*time.Second, "Time a file must stop changing before it is queued")
	cmd.Flags().BoolVar(&opts.Existing, "existing", false, "Also queue videos already in the folder")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "Serve the status API on this address, e.g. :8091")
	cmd.Flags().StringVar(&opts.AuthUsername, "auth-username", "", "Basic auth username for the status API")
	cmd.Flags().StringVar(&opts.AuthPassword, "auth-password", "", "Basic auth password for the status API")
	return cmd
}

// RunWatch runs the hot folder until ctx is cancelled.
func RunWatch(ctx context.Context, env Env, opts WatchOptions) error {
	logger := logging.GetLogger("watch")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if env.Stdout {
		logger.Warn("Streaming to stdout is not supported in watch mode, writing files instead")
		env.Stdout = false
	}

	initial, err := env.LoadSettings()
	if err != nil {
		return err
	}
	var settings atomic.Pointer[config.Settings]
	settings.Store(&initial)

	bus := events.New()
	defer bus.Close()

	if env.SettingsPath != "" {
		watcher := config.NewWatcher(env.SettingsPath, config.LoadSettings, logger)
		watcher.OnReload(func(s config.Settings) {
			settings.Store(&s)
			bus.Publish(events.SettingsReloadedEvent{Path: env.SettingsPath})
		})
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("Settings reload disabled", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	queue := render.NewQueue(bus)
	defer func() {
		if err := queue.Discard(); err != nil {
			logger.Warn("Failed to remove scratch directories", "error", err)
		}
	}()

	if opts.Listen != "" {
		tracker := api.NewTracker(bus)
		defer tracker.Close()
		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Queue:             queue,
			Tracker:           tracker,
			EventBus:          bus,
			PrometheusHandler: exporters.HTTPHandler(),
		})
		go func() {
			if err := server.Serve(ctx, opts.Listen); err != nil {
				logger.Error("API server failed", "error", err)
			}
		}()
	}

	folder := hotfolder.New(opts.Dir, logger,
		hotfolder.WithExtensions(opts.Extensions...),
		hotfolder.WithSettle(opts.Settle),
		hotfolder.WithIgnore(isRenderOutput))

	wake := make(chan struct{}, 1)
	enqueue := func(path string) {
		req, err := render.NewRequest(path, *settings.Load(), false, env.ScratchDir)
		if err != nil {
			logger.Warn("Cannot queue video", "path", path, "error", err)
			return
		}
		if !queue.Add(req) {
			_ = req.Discard()
			return
		}
		logger.Info("Queued video", "video", req.Name(), "position", queue.Len())
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	if opts.Existing {
		paths, err := folder.Existing()
		if err != nil {
			return err
		}
		for _, path := range paths {
			enqueue(path)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		work(ctx, env, bus, queue, wake)
	}()

	notifier := systemd.NewNotifier()
	if err := notifier.Ready(); err != nil {
		logger.Debug("systemd notify failed", "error", err)
	}

	err = folder.Run(ctx, enqueue)
	_ = notifier.Stopping()
	cancel()
	<-done
	return err
}

// work renders queued videos one at a time until ctx is cancelled. A failed
// render is reported and the next one starts.
func work(ctx context.Context, env Env, bus *events.Bus, queue *render.Queue, wake <-chan struct{}) {
	logger := logging.GetLogger("watch")
	notifier := systemd.NewNotifier()
	renderer := env.NewRenderer(bus)

	for {
		req, ok := queue.Next()
		if !ok {
			_ = notifier.Status("Idle")
			select {
			case <-ctx.Done():
				return
			case <-wake:
				continue
			}
		}

		_ = notifier.Status("Rendering %s", req.Name())
		_, err := renderer.Render(ctx, req)
		if err != nil {
			render.WriteFailureReport(os.Stderr, logging.GetBuffer(), err, env.reportLines())
			if !render.KeepsScript(err) {
				_ = req.Discard()
			}
			if ctx.Err() != nil {
				return
			}
		}
		if env.MetricsTextfile != "" {
			if err := metrics.WriteTextfile(env.MetricsTextfile); err != nil {
				logger.Warn("Failed to write metrics textfile", "error", err)
			}
		}
	}
}

// isRenderOutput matches the names the renderer writes so outputs landing
// in the watched folder are not queued again.
func isRenderOutput(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(stem, render.OutputSuffix) || strings.Contains(stem, render.OutputSuffix+"-")
}
