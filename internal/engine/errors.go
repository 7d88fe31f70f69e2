package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/rigmatch/internal/request"
)

// FlowError represents a flow-integrity failure.
//
// These are programmer or integration errors, not user input problems:
// the flow instance is unusable, the caller must discard the state and
// let the user restart. Bad user input never produces a FlowError; it
// produces an Outcome with Kind OutcomeValidationError instead.
type FlowError struct {
	// Code identifies the error category.
	Code FlowErrorCode

	// Message is a human-readable description.
	Message string

	// Kind is the request kind, when known.
	Kind request.Kind

	// StepID is the step the flow was on, when known.
	StepID string
}

// FlowErrorCode categorizes flow-integrity errors.
type FlowErrorCode string

const (
	// ErrCodeUnknownKind indicates no graph is registered for the kind.
	ErrCodeUnknownKind FlowErrorCode = "UNKNOWN_KIND"

	// ErrCodeWrongInputMode indicates a text call on a choice step or
	// a choice call on a free-input step.
	ErrCodeWrongInputMode FlowErrorCode = "WRONG_INPUT_MODE"

	// ErrCodeStateReleased indicates a call on a completed or
	// abandoned state.
	ErrCodeStateReleased FlowErrorCode = "STATE_RELEASED"

	// ErrCodeUnknownStep indicates the state points at a step the
	// graph doesn't define (state from a stale graph version).
	ErrCodeUnknownStep FlowErrorCode = "UNKNOWN_STEP"
)

// Error implements the error interface.
func (e *FlowError) Error() string {
	if e.Kind != "" && e.StepID != "" {
		return fmt.Sprintf("%s: %s (kind=%s, step=%s)", e.Code, e.Message, e.Kind, e.StepID)
	}
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownKind returns true if the error is an unknown-kind error.
// Uses errors.As to handle wrapped errors.
func IsUnknownKind(err error) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Code == ErrCodeUnknownKind
}

// IsWrongInputMode returns true if the error is a wrong-input-mode
// error. Uses errors.As to handle wrapped errors.
func IsWrongInputMode(err error) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Code == ErrCodeWrongInputMode
}

// IsStateReleased returns true if the error is a released-state error.
// Uses errors.As to handle wrapped errors.
func IsStateReleased(err error) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Code == ErrCodeStateReleased
}

// newUnknownKindError creates a FlowError for an unregistered kind.
func newUnknownKindError(kind request.Kind) *FlowError {
	return &FlowError{
		Code:    ErrCodeUnknownKind,
		Message: "no flow registered for request kind",
		Kind:    kind,
	}
}

// newWrongInputModeError creates a FlowError for a mismatched call.
func newWrongInputModeError(kind request.Kind, stepID, want string) *FlowError {
	return &FlowError{
		Code:    ErrCodeWrongInputMode,
		Message: "current step requires " + want,
		Kind:    kind,
		StepID:  stepID,
	}
}

// newStateReleasedError creates a FlowError for a spent state.
func newStateReleasedError(kind request.Kind) *FlowError {
	return &FlowError{
		Code:    ErrCodeStateReleased,
		Message: "flow state was completed or abandoned",
		Kind:    kind,
	}
}
