package runtime

import (
	"context"
	"time"

	"github.com/aretw0/routine/pkg/domain"
)

// pauseController tracks exclusive suspension of the default behavior.
// Only the 0->1 and 1->0 depth transitions touch the slot, so overlapping
// holders compose instead of overwriting each other's snapshot.
type pauseController struct {
	depth        int
	saved        domain.Behavior
	savedElapsed time.Duration
}

func (e *Engine) pauseDefault(ctx context.Context, holder string) {
	e.pause.depth++
	if e.pause.depth == 1 {
		e.pause.saved = e.slot
		e.pause.savedElapsed = e.deflt.Elapsed()
		e.endBehavior(ctx, domain.DefaultCommandName, e.pause.saved, false)
		e.slot = domain.Noop
		e.deflt.Stop()
	}
	e.logger.Debug("default paused", "holder", holder, "depth", e.pause.depth, "tick", e.ticks)
	if e.hooks.OnDefaultPaused != nil {
		e.hooks.OnDefaultPaused(ctx, e.pauseEvent(domain.EventDefaultPaused, holder))
	}
}

func (e *Engine) resumeDefault(ctx context.Context, holder string) {
	if e.pause.depth == 0 {
		return
	}
	e.pause.depth--
	if e.pause.depth == 0 {
		e.slot = e.pause.saved
		e.pause.saved = nil
		e.call(ctx, domain.DefaultCommandName, domain.PhaseInitialize, e.slot.Initialize)
		if e.policy == domain.ResumeReset {
			e.deflt.Reset()
		}
		e.deflt.Start()
	}
	e.logger.Debug("default resumed", "holder", holder, "depth", e.pause.depth, "tick", e.ticks)
	if e.hooks.OnDefaultResumed != nil {
		e.hooks.OnDefaultResumed(ctx, e.pauseEvent(domain.EventDefaultResumed, holder))
	}
}

func (e *Engine) pauseEvent(t domain.EventType, holder string) *domain.PauseEvent {
	return &domain.PauseEvent{
		EventBase:      e.base(t),
		Holder:         holder,
		Depth:          e.pause.depth,
		DefaultElapsed: e.deflt.Elapsed(),
	}
}
