package runtime

import (
	"context"

	"github.com/aretw0/routine/pkg/domain"
)

// tagState is the per-command runtime of a domain.Tag.
type tagState interface {
	observe(ctx context.Context, e *Engine, holder string, active bool)
	fresh() tagState
}

func newTagState(t domain.Tag) tagState {
	switch t {
	case domain.PauseDefault:
		return &pauseDefaultTag{}
	default:
		// Unknown tags are rejected by Command.Validate before we get here.
		return nopTag{}
	}
}

type nopTag struct{}

func (nopTag) observe(context.Context, *Engine, string, bool) {}

func (nopTag) fresh() tagState { return nopTag{} }

// pauseDefaultTag pauses the default on the rising edge of the conjunction
// and resumes it on the falling edge. Each latch fires once per run of
// equal values; holding makes sure we only resume a pause we took.
type pauseDefaultTag struct {
	enteredTrue  bool
	enteredFalse bool
	holding      bool
}

func (*pauseDefaultTag) fresh() tagState { return &pauseDefaultTag{} }

func (t *pauseDefaultTag) observe(ctx context.Context, e *Engine, holder string, active bool) {
	if active {
		t.enteredFalse = false
		if t.enteredTrue {
			return
		}
		t.enteredTrue = true
		if !t.holding {
			t.holding = true
			e.pauseDefault(ctx, holder)
		}
		return
	}

	t.enteredTrue = false
	if t.enteredFalse {
		return
	}
	t.enteredFalse = true
	if t.holding {
		t.holding = false
		e.resumeDefault(ctx, holder)
	}
}
