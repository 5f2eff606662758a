package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/smazurov/teres/internal/logging"
	"github.com/smazurov/teres/internal/progress"
)

// LogParser parses a log line and returns the log level and message.
type LogParser func(line string) (level, msg string)

// killedExitCode is reported for a stage that had to be force-killed.
const killedExitCode = 137

// Pipeline runs a source stage piped into a transcoder stage.
type Pipeline struct {
	logger           logging.Logger
	sourceLogger     logging.Logger
	transcoderLogger logging.Logger
	logParser        LogParser
	interactive      bool
	stdout           io.Writer
	gracefulTimeout  time.Duration // SIGINT to SIGKILL
	killTimeout      time.Duration // SIGKILL to giving up
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInteractive overrides terminal detection. When interactive, the
// source's stderr is inherited instead of scanned for progress.
func WithInteractive(interactive bool) Option {
	return func(p *Pipeline) {
		p.interactive = interactive
	}
}

// WithStdout sets where the transcoder's stdout goes. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) {
		p.stdout = w
	}
}

// WithSourceLogger sets the logger for the source's non-progress output.
func WithSourceLogger(logger logging.Logger) Option {
	return func(p *Pipeline) {
		p.sourceLogger = logger
	}
}

// WithTranscoderLog sets the logger and level parser for transcoder output.
func WithTranscoderLog(logger logging.Logger, parser LogParser) Option {
	return func(p *Pipeline) {
		p.transcoderLogger = logger
		p.logParser = parser
	}
}

// WithTimeouts sets the graceful and kill timeouts used on cancellation.
func WithTimeouts(graceful, kill time.Duration) Option {
	return func(p *Pipeline) {
		p.gracefulTimeout = graceful
		p.killTimeout = kill
	}
}

// NewPipeline creates a pipeline. Interactivity defaults to whether stderr
// is a terminal.
func NewPipeline(logger logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:          logger,
		interactive:     StderrIsTerminal(),
		stdout:          os.Stdout,
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sourceLogger == nil {
		p.sourceLogger = logger
	}
	if p.transcoderLogger == nil {
		p.transcoderLogger = logger
	}
	return p
}

// StderrIsTerminal reports whether this process's stderr is a terminal.
func StderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Run starts the source, then the transcoder reading the source's stdout,
// and waits for both in that order. Progress markers found on the source's
// stderr are reported to sink when the pipeline is not interactive; sink
// may be nil.
//
// A non-nil error means a stage could not be launched. Exit statuses are
// reported through the Outcome.
func (p *Pipeline) Run(ctx context.Context, stages Stages, sink progress.Sink) (*Outcome, error) {
	if sink == nil {
		sink = progress.Discard
	}

	frames, framesWriter, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Stage: StageSource, Exe: stages.Source.Exe, Err: err}
	}

	var drains sync.WaitGroup

	source := newCommand(stages.Source)
	source.Stdout = framesWriter
	var sourceStderr *os.File
	if p.interactive {
		source.Stderr = os.Stderr
	} else {
		sourceStderr, err = attachStderr(source)
		if err != nil {
			closeAll(frames, framesWriter)
			return nil, &LaunchError{Stage: StageSource, Exe: stages.Source.Exe, Err: err}
		}
	}

	if err := source.Start(); err != nil {
		closeAll(frames, framesWriter, sourceStderr, stderrWriter(source))
		p.logger.Error("Failed to start source", "error", err, "command", stages.Source.String())
		return nil, &LaunchError{Stage: StageSource, Exe: stages.Source.Exe, Err: err}
	}
	// the child holds its own copies of the write ends
	closeAll(framesWriter, stderrWriter(source))
	if sourceStderr != nil {
		drains.Add(1)
		go func() {
			defer drains.Done()
			p.scanSource(sourceStderr, sink)
		}()
	}

	transcoder := newCommand(stages.Transcoder)
	transcoder.Stdin = frames
	transcoder.Stdout = p.stdout
	transcoderStderr, err := attachStderr(transcoder)
	if err == nil {
		err = transcoder.Start()
	}
	if err != nil {
		closeAll(frames, transcoderStderr, stderrWriter(transcoder))
		p.logger.Error("Failed to start transcoder", "error", err, "command", stages.Transcoder.String())
		p.abort(source)
		drains.Wait()
		return nil, &LaunchError{Stage: StageTranscoder, Exe: stages.Transcoder.Exe, Err: err}
	}
	closeAll(frames, stderrWriter(transcoder))
	drains.Add(1)
	go func() {
		defer drains.Done()
		p.streamTranscoder(transcoderStderr)
	}()

	p.logger.Debug("Spawned subprocesses",
		"source_pid", source.Process.Pid,
		"transcoder_pid", transcoder.Process.Pid)

	sourceDone := waitAsync(source)
	transcoderDone := waitAsync(transcoder)

	outcome := &Outcome{}
	var stopOnce sync.Once
	wait := func(done <-chan error, cmd *exec.Cmd) int {
		select {
		case err := <-done:
			return p.exitCode(err)
		case <-ctx.Done():
		}
		stopOnce.Do(func() {
			outcome.Interrupted = true
			p.logger.Info("Context cancelled, stopping pipeline")
			p.sendStopSignal(source)
			p.sendStopSignal(transcoder)
		})
		return p.waitForExit(done, cmd)
	}

	outcome.SourceExit = wait(sourceDone, source)
	outcome.TranscoderExit = wait(transcoderDone, transcoder)
	drains.Wait()

	p.logger.Debug("Pipeline exited",
		"source_exit", outcome.SourceExit,
		"transcoder_exit", outcome.TranscoderExit)
	return outcome, nil
}

func newCommand(c Command) *exec.Cmd {
	cmd := exec.Command(c.Exe, c.Args...)
	setProcAttr(cmd)
	return cmd
}

// attachStderr gives cmd an OS pipe as stderr and returns the read end.
// Using a bare pipe instead of StderrPipe keeps Wait from closing the
// reader while it is still being drained.
func attachStderr(cmd *exec.Cmd) (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = w
	return r, nil
}

// stderrWriter returns the parent's copy of cmd's stderr pipe, if any.
func stderrWriter(cmd *exec.Cmd) *os.File {
	if f, ok := cmd.Stderr.(*os.File); ok && f != os.Stderr {
		return f
	}
	return nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

func waitAsync(cmd *exec.Cmd) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	return done
}

// scanSource feeds progress markers to sink and logs everything else.
func (p *Pipeline) scanSource(r *os.File, sink progress.Sink) {
	defer r.Close()

	err := progress.ScanWith(r, sink, func(record []byte) {
		for _, line := range bytes.Split(record, []byte{'\n'}) {
			if line = bytes.TrimSpace(line); len(line) > 0 {
				p.sourceLogger.Info(string(line))
			}
		}
	})
	if err != nil {
		p.logger.Warn("Error reading source output", "error", err)
		// keep the stage from blocking on a full pipe
		_, _ = io.Copy(io.Discard, r)
	}
}

// streamTranscoder logs transcoder output line by line at the parsed level.
func (p *Pipeline) streamTranscoder(r *os.File) {
	defer r.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		level, msg := "info", scanner.Text()
		if p.logParser != nil {
			level, msg = p.logParser(msg)
		}
		logAtLevel(p.transcoderLogger, level, msg)
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("Error reading transcoder output", "error", err)
		_, _ = io.Copy(io.Discard, r)
	}
}

func logAtLevel(logger logging.Logger, level, msg string) {
	switch level {
	case "panic", "fatal", "error":
		logger.Error(msg)
	case "warning":
		logger.Warn(msg)
	case "verbose", "debug", "trace":
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}

// exitCode extracts the exit code from a Wait error. Errors that are not
// exit statuses are logged and reported as 1.
func (p *Pipeline) exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// terminated by a signal
		return killedExitCode
	}
	p.logger.Error("Process exited with error", "error", err)
	return 1
}

// sendStopSignal sends SIGINT to cmd without waiting.
func (p *Pipeline) sendStopSignal(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	p.logger.Info("Sending SIGINT to process", "pid", cmd.Process.Pid)
	if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("Failed to send SIGINT", "error", err)
	}
}

// waitForExit waits for the process to exit, force-killing it after the
// graceful timeout.
func (p *Pipeline) waitForExit(done <-chan error, cmd *exec.Cmd) int {
	select {
	case err := <-done:
		return p.exitCode(err)
	case <-time.After(p.gracefulTimeout):
	}

	p.logger.Warn("Graceful shutdown timeout, forcing kill", "pid", cmd.Process.Pid, "timeout", p.gracefulTimeout)
	p.kill(cmd)
	select {
	case <-done:
	case <-time.After(p.killTimeout):
		p.logger.Error("Process did not exit after kill signal", "pid", cmd.Process.Pid)
	}
	return killedExitCode
}

// abort kills a stage that has no consumer and reaps it.
func (p *Pipeline) abort(cmd *exec.Cmd) {
	p.kill(cmd)
	_ = cmd.Wait()
}

func (p *Pipeline) kill(cmd *exec.Cmd) {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Error("Failed to kill process", "error", err)
	}
}
