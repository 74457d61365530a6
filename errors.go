package rcindex

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch is returned when a download does not complete with a success status
	ErrFetch = errors.New("fetch failed")
	// ErrBinaryNotFound is returned when the downloaded archive lacks the executable
	ErrBinaryNotFound = errors.New("binary not found in archive")
	// ErrExecution is returned when the subprocess exits unsuccessfully
	ErrExecution = errors.New("execution failed")
	// ErrTimeout is returned when the subprocess exceeds its deadline
	ErrTimeout = errors.New("execution timed out")
	// ErrSpawn is returned when the subprocess cannot be started
	ErrSpawn = errors.New("spawn failed")
	// ErrParse is returned when a listing payload is malformed
	ErrParse = errors.New("parse failed")
	// ErrConfig is returned when the rclone config cannot be established
	ErrConfig = errors.New("config failed")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when credentials are missing or invalid
	ErrUnauthorized = errors.New("unauthorized")
)

// ExecutionError describes a subprocess that terminated without success.
// ExitCode is -1 when the process was terminated by a signal. Stderr holds
// the stream verbatim.
type ExecutionError struct {
	ExitCode int
	Stderr   string
	Reason   CompletionReason
}

func (e *ExecutionError) Error() string {
	if e.Reason == ReasonKilled {
		return fmt.Sprintf("process killed: %s", strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("process exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Is reports ErrExecution so callers can match with errors.Is.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}
