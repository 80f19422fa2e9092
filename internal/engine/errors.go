package engine

import (
	"errors"
	"fmt"
)

// ErrContainerExists is wrapped by Publisher.CreateContainer when the name
// is already taken.
var ErrContainerExists = errors.New("container already exists")

// StepError is a failure attributed to one state of the run.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsCommitError reports whether err is a history save failure that
// happened after the publication itself succeeded. The remote container
// exists but History does not record it.
func IsCommitError(err error) bool {
	var se *StepError
	return errors.As(err, &se) && se.State == StateCommitting
}

// FailedState returns the state err is attributed to, or "" if err is not
// a StepError.
func FailedState(err error) State {
	var se *StepError
	if errors.As(err, &se) {
		return se.State
	}
	return ""
}
