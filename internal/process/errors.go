package process

import (
	"fmt"
	"time"
)

// ProcessError reports a command that could not be started or exited non-zero.
// ExitCode is -1 when the process never ran.
type ProcessError struct {
	Command  string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%q exited with code %d", e.Command, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%q could not be started: %v", e.Command, e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + lastLines(e.Stderr, 20)
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// ProcessTimeout reports a command killed after exceeding its timeout.
type ProcessTimeout struct {
	Command string
	Dir     string
	Timeout time.Duration
}

func (e *ProcessTimeout) Error() string {
	return fmt.Sprintf("%q did not finish within %s", e.Command, e.Timeout)
}
