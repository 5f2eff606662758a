package process

import (
	"fmt"
	"strings"
)

// Command is one executable and its arguments.
type Command struct {
	Exe  string
	Args []string
}

// String renders the command for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Exe}, c.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\"'") {
			s = fmt.Sprintf("%q", s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Stages is the pair of commands run as one pipeline.
type Stages struct {
	Source     Command
	Transcoder Command
}

// Outcome holds the exit status of both stages.
type Outcome struct {
	SourceExit     int
	TranscoderExit int
	// Interrupted is set when the run was cut short by context cancellation.
	Interrupted bool
}

// Success reports whether both stages exited cleanly.
func (o *Outcome) Success() bool {
	return o.SourceExit == 0 && o.TranscoderExit == 0
}

// Err returns an *ExitError for the first stage that failed, source before
// transcoder, or nil.
func (o *Outcome) Err() error {
	switch {
	case o.SourceExit != 0:
		return &ExitError{Stage: StageSource, ExitCode: o.SourceExit}
	case o.TranscoderExit != 0:
		return &ExitError{Stage: StageTranscoder, ExitCode: o.TranscoderExit}
	}
	return nil
}
