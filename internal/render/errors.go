package render

import (
	"errors"
	"fmt"
)

// RenderError represents a render failure with a stable code.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeInvalidPath     = "INVALID_PATH"
	ErrCodeInvalidSettings = "INVALID_SETTINGS"
	ErrCodeLaunchFailed    = "LAUNCH_FAILED"
	ErrCodeProcessFailed   = "PROCESS_FAILED"
	ErrCodeCleanupFailed   = "CLEANUP_FAILED"
	ErrCodeInterrupted     = "INTERRUPTED"
)

// ErrNotStarted marks an interruption that happened before a render began.
var ErrNotStarted = errors.New("render not started")

// NewRenderError creates a new render error
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of the first RenderError in err's chain, or "".
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
