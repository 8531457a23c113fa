package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/routine/pkg/domain"
)

// commandState is the runtime side of a registered domain.Command.
// Trigger and tag state are created here, one instance per registration.
type commandState struct {
	name       string
	behavior   domain.Behavior
	conditions []domain.Condition
	trigger    domain.TriggerMode
	tags       []tagState
	wasActive  bool
}

func newCommandState(cmd *domain.Command) *commandState {
	cs := &commandState{
		name:       cmd.Name,
		behavior:   cmd.Behavior,
		conditions: cmd.Conditions(),
		trigger:    domain.NewTriggerMode(cmd.Mode()),
	}
	for _, t := range cmd.Tags() {
		cs.tags = append(cs.tags, newTagState(t))
	}
	return cs
}

// reset drops trigger latches and tag state for a fresh run.
func (cs *commandState) reset() {
	cs.trigger = domain.NewTriggerMode(cs.trigger.Mode())
	cs.wasActive = false
	for i, t := range cs.tags {
		cs.tags[i] = t.fresh()
	}
}

// evaluate calls every condition once and AND-combines the results.
// All conditions run even after one is false.
func (cs *commandState) evaluate() (bool, error) {
	active := true
	var errs []error
	for _, cond := range cs.conditions {
		v, err := guardCondition(cond)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		active = active && v
	}
	if len(errs) > 0 {
		return false, errors.Join(errs...)
	}
	return active, nil
}

func guardCondition(cond domain.Condition) (v bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = false, &domain.PanicError{Value: r}
		}
	}()
	return cond()
}

func guard(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.PanicError{Value: r}
		}
	}()
	return fn(ctx)
}

// call runs a collaborator and isolates its failure. It reports success.
func (e *Engine) call(ctx context.Context, name string, phase domain.Phase, fn func(context.Context) error) bool {
	if err := guard(ctx, fn); err != nil {
		e.fail(ctx, name, phase, err)
		return false
	}
	return true
}

// fail records a collaborator failure: report, throttled log, hook.
func (e *Engine) fail(ctx context.Context, name string, phase domain.Phase, err error) {
	cerr := &domain.CollaboratorError{Command: name, Phase: phase, Err: err}
	if e.report != nil {
		e.report.Failed = append(e.report.Failed, cerr.Error())
	}
	if e.limiter(name).Allow() {
		e.logger.Warn("collaborator failed",
			"command", name,
			"phase", string(phase),
			"tick", e.ticks,
			"err", err,
		)
	}
	if e.hooks.OnCollaboratorError != nil {
		e.hooks.OnCollaboratorError(ctx, &domain.ErrorEvent{
			EventBase: e.base(domain.EventCollaboratorErr),
			Err:       cerr,
		})
	}
}
