package plan

import (
	"context"
	"fmt"

	"github.com/aretw0/routine"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/registry"
)

// Build validates the plan and assembles an idle scheduler from it.
// opts are applied after the plan's own budget, resume policy and name, so
// callers can override them (for instance with a simulated clock).
func (p *Plan) Build(ctx context.Context, reg *registry.Registry, opts ...routine.Option) (*routine.Scheduler, error) {
	if err := p.Validate(reg); err != nil {
		return nil, err
	}

	policy, _ := domain.ParseResumePolicy(p.ResumePolicy)
	base := []routine.Option{
		routine.WithName(p.Name),
		routine.WithResumePolicy(policy),
	}
	if p.Budget > 0 {
		base = append(base, routine.WithBudget(p.Budget))
	}
	s := routine.New(append(base, opts...)...)

	deflt, err := reg.Build(p.Default.Behavior, p.Default.Params)
	if err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	if err := s.SetDefault(ctx, deflt); err != nil {
		return nil, err
	}

	cmds := make([]*domain.Command, 0, len(p.Commands))
	for _, spec := range p.Commands {
		cmd, err := spec.build(s, reg)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", spec.Name, err)
		}
		cmds = append(cmds, cmd)
	}
	if err := s.Register(ctx, cmds...); err != nil {
		return nil, err
	}
	return s, nil
}

func (c CommandSpec) build(s *routine.Scheduler, reg *registry.Registry) (*domain.Command, error) {
	b, err := reg.Build(c.Behavior, c.Params)
	if err != nil {
		return nil, err
	}

	conds := make([]domain.Condition, 0, len(c.When))
	for _, src := range c.When {
		cond, err := Condition(s, src)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	mode, _ := c.ParsedMode()
	tags, _ := c.ParsedTags()
	return domain.NewCommand(c.Name, b).
		DeclareCondition(conds...).
		DeclareTriggerMode(mode).
		DeclareTags(tags...).
		Requires(c.Requires...), nil
}
