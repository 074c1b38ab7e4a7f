package survey

import (
	"errors"
	"fmt"
)

// ErrRejected is wrapped by every error returned for input that does not fit the node.
var ErrRejected = errors.New("survey: input rejected")

// Error codes surfaced as err_code in handler logs.
const (
	CodeRejected    = "input_rejected"
	CodeUnknownStep = "unknown_step"
	CodeTerminal    = "terminal_step"
	CodeNoRoute     = "no_route"
	CodeBadTarget   = "bad_back_target"
	CodeNeedsLookup = "needs_lookup"
)

// Error is a flow error bound to the step it occurred on.
type Error struct {
	code string
	Step Step
	Err  error
}

func newError(code string, step Step, err error) *Error {
	return &Error{code: code, Step: step, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("survey %s at %s: %v", e.code, e.Step, e.Err)
	}
	return fmt.Sprintf("survey %s at %s", e.code, e.Step)
}

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

func (e *Error) Unwrap() error { return e.Err }

// IsRejected reports whether err is an input rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
