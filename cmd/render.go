package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smazurov/teres/internal/config"
	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/metrics"
	"github.com/smazurov/teres/internal/metrics/exporters"
	"github.com/smazurov/teres/internal/render"
)

// SplitInputs flattens positional arguments that may hold comma-separated
// lists of videos. Blank entries are dropped.
func SplitInputs(args []string) []string {
	var inputs []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				inputs = append(inputs, part)
			}
		}
	}
	return inputs
}

// RunRender queues every input, renders them in order and returns the
// process exit code. Diagnostics go to stderr.
func RunRender(ctx context.Context, env Env, args []string) int {
	return runRender(ctx, env, args, os.Stderr, env.NewRenderer)
}

func runRender(ctx context.Context, env Env, args []string, stderr io.Writer, newRenderer func(*events.Bus) *render.Renderer) int {
	logger := logging.GetLogger("main")

	inputs := SplitInputs(args)
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "No input files given")
		return ExitError
	}

	settings, err := env.LoadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load settings: %v\n", err)
		return ExitError
	}

	if env.MetricsAddr != "" {
		go func() {
			if err := exporters.Serve(ctx, env.MetricsAddr); err != nil {
				logger.Warn("Metrics server stopped", "error", err)
			}
		}()
	}
	if env.MetricsTextfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(env.MetricsTextfile); err != nil {
				logger.Warn("Failed to write metrics textfile", "path", env.MetricsTextfile, "error", err)
			}
		}()
	}

	bus := events.New()
	defer bus.Close()

	queue := render.NewQueue(bus)
	for _, input := range inputs {
		req, err := newRequest(input, settings, env)
		if err != nil {
			fmt.Fprintf(stderr, "Cannot queue %s: %v\n", input, err)
			discard(queue)
			return ExitError
		}
		if !queue.Add(req) {
			logger.Info("Video already queued", "video", req.VideoPath)
			_ = req.Discard()
		}
	}

	pending := queue.Pending()
	results, err := newRenderer(bus).RenderAll(ctx, queue)
	if err != nil {
		var keep []*render.Request
		if len(results) < len(pending) && render.KeepsScript(err) {
			failed := pending[len(results)]
			keep = append(keep, failed)
			fmt.Fprintf(stderr, "Script kept at %s\n", failed.ScriptPath)
		}
		discard(queue, keep...)

		render.WriteFailureReport(stderr, logging.GetBuffer(), err, env.reportLines())
		if render.ErrorCode(err) == render.ErrCodeInterrupted {
			return ExitInterrupted
		}
		return ExitRenderFailure
	}

	logger.Debug("Render pass complete", "count", len(results))
	return ExitOK
}

// discard drops whatever is left in the queue after a failed pass.
func discard(queue *render.Queue, keep ...*render.Request) {
	if err := queue.Discard(keep...); err != nil {
		logging.GetLogger("main").Warn("Failed to remove scratch directories", "error", err)
	}
}

// newRequest checks that input is a readable file and prepares its render.
func newRequest(input string, settings config.Settings, env Env) (*render.Request, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, render.NewRenderError(render.ErrCodeInvalidPath, "cannot read video", err)
	}
	if info.IsDir() {
		return nil, render.NewRenderError(render.ErrCodeInvalidPath, "video is a directory", errors.New(input))
	}
	return render.NewRequest(input, settings, env.Stdout, env.ScratchDir)
}

func (e Env) reportLines() int {
	if e.ReportLines > 0 {
		return e.ReportLines
	}
	return render.ReportLines
}
