package errors

import (
	"errors"
	"fmt"
)

// InvalidTransitionError reports a phase transition whose exit criteria
// were not met. It wraps no mutation: the feature is unchanged when this
// error is returned.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// Is reports a match against ErrInvalidTransition so callers can use
// errors.Is without type assertions.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ErrInvalidTransition is the sentinel for errors.Is checks against
// *InvalidTransitionError values.
var ErrInvalidTransition = errors.New("invalid phase transition")

// GateFailedError reports an automated gate that exhausted its retries.
type GateFailedError struct {
	Gate     string
	Attempts int
}

// Error implements the error interface.
func (e *GateFailedError) Error() string {
	return fmt.Sprintf("gate %q failed after %d attempt(s)", e.Gate, e.Attempts)
}

// Is reports a match against ErrGateFailed.
func (e *GateFailedError) Is(target error) bool {
	return target == ErrGateFailed
}

// HumanGateRequiredError reports a run halted at a human or step-back
// gate. This is a pipeline pause, not a failure.
type HumanGateRequiredError struct {
	Gate string
}

// Error implements the error interface.
func (e *HumanGateRequiredError) Error() string {
	return fmt.Sprintf("gate %q requires human action", e.Gate)
}

// Is reports a match against ErrHumanGateRequired.
func (e *HumanGateRequiredError) Is(target error) bool {
	return target == ErrHumanGateRequired
}

// AgentExitError carries the exit code of a failed agent subprocess so
// the run command can pass it through unchanged.
type AgentExitError struct {
	Code int
	Err  error
}

// Error implements the error interface.
func (e *AgentExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent exited with code %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("agent exited with code %d", e.Code)
}

// Unwrap returns the underlying process error.
func (e *AgentExitError) Unwrap() error {
	return e.Err
}
