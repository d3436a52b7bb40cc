package cmd

import (
	"github.com/mouse-blink/codemodder/internal/logging"
)

// Process exit statuses.
const (
	ExitSuccess = 0
	// ExitFailure covers invalid invocations, configuration and IO errors.
	ExitFailure = 1
	// ExitReport means the report could not be written.
	ExitReport = 2
)

// ExitError carries the exit status of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitErrorFor(err error) error {
	if err == nil {
		return nil
	}

	if t, ok := logging.TypeOf(err); ok && t == logging.ErrorTypeReport {
		return &ExitError{Code: ExitReport, Err: err}
	}

	return &ExitError{Code: ExitFailure, Err: err}
}
