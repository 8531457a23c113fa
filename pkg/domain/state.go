package domain

import (
	"fmt"
	"strings"
	"time"
)

// RunStatus describes where the scheduler is in its lifecycle.
type RunStatus string

const (
	StatusIdle        RunStatus = "idle"        // Built, not initialized
	StatusRunning     RunStatus = "running"     // Initialized, budget not reached
	StatusFinished    RunStatus = "finished"    // Budget reached
	StatusInterrupted RunStatus = "interrupted" // Cancelled from outside
)

// Terminal reports whether no further tick will reach any behavior.
func (s RunStatus) Terminal() bool {
	return s == StatusFinished || s == StatusInterrupted
}

// ResumePolicy decides what the default clock does when a paused default
// behavior is restored.
type ResumePolicy int

const (
	// ResumeReset restarts the default clock from zero.
	ResumeReset ResumePolicy = iota
	// ResumeContinue continues the default clock from its paused value.
	ResumeContinue
)

func (p ResumePolicy) String() string {
	switch p {
	case ResumeReset:
		return "reset"
	case ResumeContinue:
		return "continue"
	default:
		return fmt.Sprintf("resume(%d)", int(p))
	}
}

// ParseResumePolicy accepts "reset" and "continue" (also "resume").
func ParseResumePolicy(s string) (ResumePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset":
		return ResumeReset, nil
	case "continue", "resume":
		return ResumeContinue, nil
	}
	return ResumeReset, fmt.Errorf("unknown resume policy %q", s)
}

// TickReport is the observable outcome of one scheduler tick.
// Reports are immutable once published.
type TickReport struct {
	Tick           uint64        `json:"tick"`
	Timestamp      time.Time     `json:"timestamp"`
	Elapsed        time.Duration `json:"elapsed"`
	DefaultElapsed time.Duration `json:"default_elapsed"`
	Status         RunStatus     `json:"status"`

	// Active lists commands whose conjunction held this tick.
	Active []string `json:"active,omitempty"`
	// Ran lists commands whose behavior was ticked.
	Ran []string `json:"ran,omitempty"`
	// Ended lists commands that received End this tick.
	Ended []string `json:"ended,omitempty"`
	// Failed lists "command/phase: error" for isolated collaborator failures.
	Failed []string `json:"failed,omitempty"`

	DefaultRan bool `json:"default_ran"`
	PauseDepth int  `json:"pause_depth"`
}

// Snapshot returns a deep copy of the report.
func (r *TickReport) Snapshot() *TickReport {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Active = append([]string(nil), r.Active...)
	cp.Ran = append([]string(nil), r.Ran...)
	cp.Ended = append([]string(nil), r.Ended...)
	cp.Failed = append([]string(nil), r.Failed...)
	return &cp
}

// RunSnapshot is a point-in-time view of a run for status consumers.
type RunSnapshot struct {
	Routine    string        `json:"routine,omitempty"`
	RunID      string        `json:"run_id,omitempty"`
	Status     RunStatus     `json:"status"`
	Ticks      uint64        `json:"ticks"`
	Elapsed    time.Duration `json:"elapsed"`
	Paused     bool          `json:"paused"`
	PauseDepth int           `json:"pause_depth"`
	Last       *TickReport   `json:"last,omitempty"`
	Failures   uint64        `json:"failures"`
}
