package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommandRun      EventType = "command_run"
	EventCommandEnd      EventType = "command_end"
	EventDefaultPaused   EventType = "default_paused"
	EventDefaultResumed  EventType = "default_resumed"
	EventCollaboratorErr EventType = "collaborator_error"
	EventFinish          EventType = "finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Tick      uint64        `json:"tick"`
	Elapsed   time.Duration `json:"elapsed"`
}

// CommandEvent represents a command tick or a command end.
type CommandEvent struct {
	EventBase
	Command     string `json:"command"`
	Interrupted bool   `json:"interrupted,omitempty"`
}

// PauseEvent represents a change of the default behavior's pause depth.
type PauseEvent struct {
	EventBase
	Holder         string        `json:"holder"`
	Depth          int           `json:"depth"`
	DefaultElapsed time.Duration `json:"default_elapsed"`
}

// ErrorEvent represents an isolated collaborator failure.
type ErrorEvent struct {
	EventBase
	Err *CollaboratorError `json:"-"`
}

// FinishEvent is emitted once when a run stops, by budget or interruption.
type FinishEvent struct {
	EventBase
	Status RunStatus `json:"status"`
	Ticks  uint64    `json:"ticks"`
}

// LifecycleHooks defines callbacks for scheduler observability.
// Hooks run synchronously on the ticking goroutine; nil fields are skipped.
type LifecycleHooks struct {
	OnCommandRun        func(context.Context, *CommandEvent)
	OnCommandEnd        func(context.Context, *CommandEvent)
	OnDefaultPaused     func(context.Context, *PauseEvent)
	OnDefaultResumed    func(context.Context, *PauseEvent)
	OnCollaboratorError func(context.Context, *ErrorEvent)
	OnTick              func(context.Context, *TickReport)
	OnFinish            func(context.Context, *FinishEvent)
}

// ChainHooks fans every callback out to all given hook sets, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		out.OnCommandRun = chain(out.OnCommandRun, h.OnCommandRun)
		out.OnCommandEnd = chain(out.OnCommandEnd, h.OnCommandEnd)
		out.OnDefaultPaused = chain(out.OnDefaultPaused, h.OnDefaultPaused)
		out.OnDefaultResumed = chain(out.OnDefaultResumed, h.OnDefaultResumed)
		out.OnCollaboratorError = chain(out.OnCollaboratorError, h.OnCollaboratorError)
		out.OnTick = chain(out.OnTick, h.OnTick)
		out.OnFinish = chain(out.OnFinish, h.OnFinish)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
