package process

import "fmt"

// Stage names used in errors and logs.
const (
	StageSource     = "source"
	StageTranscoder = "transcoder"
)

// LaunchError reports a stage that could not be started.
type LaunchError struct {
	Stage string
	Exe   string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s %q: %v", e.Stage, e.Exe, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitError reports a stage that exited unsuccessfully.
type ExitError struct {
	Stage    string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Stage, e.ExitCode)
}
