package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by feedlist.
const (
	ExitCodeError        = 1
	ExitCodeInvalidInput = 2
)

// Errors returned by command flag validation.
var (
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrInvalidJump       = errors.New("jump must be 'top' or 'bottom'")
)

// ExitError carries a specific process exit code alongside the failure.
type ExitError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", e.Err, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// invalidInput wraps err with ExitCodeInvalidInput.
func invalidInput(err error) error {
	return &ExitError{ExitCode: ExitCodeInvalidInput, Err: err}
}
