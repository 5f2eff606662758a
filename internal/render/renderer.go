// Package render builds, runs and cleans up renders.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/smazurov/teres/internal/events"
	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/metrics"
	"github.com/smazurov/teres/internal/process"
	"github.com/smazurov/teres/internal/progress"
)

// Runner executes pipeline stages. *process.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, stages process.Stages, sink progress.Sink) (*process.Outcome, error)
}

// Result describes a finished render.
type Result struct {
	RenderID   string
	VideoPath  string
	OutputName string
	Elapsed    time.Duration
}

// Renderer runs requests one at a time.
type Renderer struct {
	builder      *CommandBuilder
	runner       Runner
	logger       *slog.Logger
	bus          *events.Bus
	out          io.Writer
	progressStep int
	now          func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithEvents publishes render lifecycle events to bus.
func WithEvents(bus *events.Bus) RendererOption {
	return func(r *Renderer) {
		r.bus = bus
	}
}

// WithOutput sets where user-facing status lines go. Defaults to os.Stderr.
func WithOutput(w io.Writer) RendererOption {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithLogger overrides the "render" module logger.
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithProgressStep sets the progress logging granularity in percent.
func WithProgressStep(percent int) RendererOption {
	return func(r *Renderer) {
		r.progressStep = percent
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(builder *CommandBuilder, runner Runner, opts ...RendererOption) *Renderer {
	r := &Renderer{
		builder:      builder,
		runner:       runner,
		logger:       logging.GetLogger("render"),
		out:          os.Stderr,
		progressStep: progress.DefaultStep,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render runs one request and cleans up after it on success. Failures are
// returned as *RenderError. Only the failures KeepsScript accepts leave the
// script behind on purpose.
func (r *Renderer) Render(ctx context.Context, req *Request) (*Result, error) {
	logger := r.logger.With("render_id", req.ID)
	fmt.Fprintf(r.out, "Processing %s\n", req.Name())

	cmd, err := r.builder.Build(req.ScriptPath, req.VideoPath, req.OutputPath, req.Settings, req.Stdout)
	if err != nil {
		return nil, r.fail(req, err, 0)
	}
	logger.Debug("Starting processes",
		"source", cmd.Source.String(),
		"transcoder", cmd.Transcoder.String())

	start := r.now()
	r.bus.Publish(events.RenderStartedEvent{
		RenderID:  req.ID,
		VideoPath: req.VideoPath,
		Output:    cmd.OutputName,
		StartedAt: start,
	})

	video := req.Name()
	defer metrics.DeleteRender(video)
	sink := progress.MultiSink{
		progress.NewReporter(logging.GetLogger("progress").With("video", video),
			progress.WithStep(r.progressStep),
			progress.WithUpdateFunc(func(s progress.Snapshot) {
				r.bus.Publish(events.RenderProgressEvent{RenderID: req.ID, Frame: s.Position, Total: s.Total})
			})),
		metrics.ProgressSink{Video: video},
	}

	outcome, err := r.runner.Run(ctx, cmd.Stages, sink)
	if err != nil {
		return nil, r.fail(req, NewRenderError(ErrCodeLaunchFailed, "failed to start pipeline", err), 0)
	}
	if outcome.Interrupted || ctx.Err() != nil {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return nil, r.fail(req, NewRenderError(ErrCodeInterrupted, "render interrupted", cause), outcome.TranscoderExit)
	}
	if err := outcome.Err(); err != nil {
		logger.Error("Processing failed", "error", err)
		code := outcome.TranscoderExit
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode
		}
		return nil, r.fail(req, NewRenderError(ErrCodeProcessFailed, "processing failed", err), code)
	}

	elapsed := r.now().Sub(start)
	fmt.Fprintf(r.out, "Finished processing %s to %s in %s\n", video, cmd.OutputName, FormatElapsed(elapsed))

	if err := req.Cleanup(); err != nil {
		return nil, r.fail(req, NewRenderError(ErrCodeCleanupFailed, "failed to clean temp files", err), 0)
	}

	metrics.ObserveRender(metrics.ResultSuccess, elapsed)
	r.bus.Publish(events.RenderFinishedEvent{
		RenderID:  req.ID,
		VideoPath: req.VideoPath,
		Output:    cmd.OutputName,
		Elapsed:   elapsed,
	})
	logger.Info("Render finished", "video", video, "output", cmd.OutputName, "elapsed", elapsed)

	return &Result{
		RenderID:   req.ID,
		VideoPath:  req.VideoPath,
		OutputName: cmd.OutputName,
		Elapsed:    elapsed,
	}, nil
}

// RenderAll renders the queue strictly in order and clears it after a full
// pass. The pass stops at the first failure, leaving the queue intact.
func (r *Renderer) RenderAll(ctx context.Context, q *Queue) ([]*Result, error) {
	var results []*Result
	for _, req := range q.Pending() {
		if err := ctx.Err(); err != nil {
			return results, NewRenderError(ErrCodeInterrupted, "queue interrupted", fmt.Errorf("%w: %w", ErrNotStarted, err))
		}
		res, err := r.Render(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	q.Clear()
	return results, nil
}

func (r *Renderer) fail(req *Request, err error, exitCode int) error {
	code := ErrorCode(err)
	metrics.ObserveRender(metrics.ResultFailure, 0)
	r.bus.Publish(events.RenderFailedEvent{
		RenderID:  req.ID,
		VideoPath: req.VideoPath,
		Code:      code,
		Error:     err.Error(),
		ExitCode:  exitCode,
	})
	if KeepsScript(err) {
		r.logger.Info("Keeping script for inspection", "script", req.ScriptPath)
	}
	return err
}

// KeepsScript reports whether a failed render leaves its script on disk
// for inspection. Renders interrupted before they started keep nothing.
func KeepsScript(err error) bool {
	if errors.Is(err, ErrNotStarted) {
		return false
	}
	switch ErrorCode(err) {
	case ErrCodeProcessFailed, ErrCodeInterrupted:
		return true
	}
	return false
}

// FormatElapsed renders d rounded to seconds, or to milliseconds below one
// second.
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
