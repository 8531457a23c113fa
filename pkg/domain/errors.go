package domain

import (
	"errors"
	"fmt"
)

// Configuration errors. They surface from registration or initialization,
// before the first tick.
var (
	ErrNilCommand        = errors.New("nil command")
	ErrUnnamedCommand    = errors.New("command has no name")
	ErrNilBehavior       = errors.New("command has no behavior")
	ErrNoConditions      = errors.New("command has no conditions")
	ErrNilCondition      = errors.New("nil condition")
	ErrInvalidMode       = errors.New("invalid trigger mode")
	ErrInvalidTag        = errors.New("invalid tag")
	ErrDuplicateCommand  = errors.New("duplicate command name")
	ErrNoDefaultBehavior = errors.New("no default behavior set")
	ErrInvalidBudget     = errors.New("run budget must be positive")
)

// Lifecycle errors.
var (
	// ErrNotInitialized is returned by Tick before Initialize.
	ErrNotInitialized = errors.New("scheduler not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("scheduler already initialized")
	// ErrStopped is returned when the run has already finished or been interrupted.
	ErrStopped = errors.New("scheduler stopped")
)

// ErrRunNotFound is returned when a run ID cannot be found in a trace store.
var ErrRunNotFound = errors.New("run not found")

// Phase identifies the collaborator call that failed.
type Phase string

const (
	PhaseCondition  Phase = "condition"
	PhaseInitialize Phase = "initialize"
	PhaseTick       Phase = "tick"
	PhaseEnd        Phase = "end"
)

// DefaultCommandName labels the default behavior in errors, events and reports.
const DefaultCommandName = "default"

// CollaboratorError wraps a failure raised by a condition or a behavior.
// The scheduler isolates it to the offending command and keeps ticking.
type CollaboratorError struct {
	Command string
	Phase   Phase
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Phase, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
