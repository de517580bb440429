package cmd

import (
	"errors"
	"fmt"
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func usage(msg string) error {
	return &ExitError{Code: 2, Err: errors.New(msg)}
}
