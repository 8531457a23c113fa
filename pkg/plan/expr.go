package plan

import (
	"fmt"

	"github.com/aretw0/routine"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// env is the variable set a condition expression is evaluated against.
func env(s *routine.Scheduler) map[string]any {
	m := map[string]any{
		"elapsed":         0.0,
		"default_elapsed": 0.0,
		"tick":            uint64(0),
		"paused":          false,
		"pause_depth":     0,
		"active":          func(string) bool { return false },
	}
	if s == nil {
		return m
	}
	m["elapsed"] = s.Elapsed().Seconds()
	m["default_elapsed"] = s.DefaultElapsed().Seconds()
	m["tick"] = s.Ticks()
	m["paused"] = s.Paused()
	m["pause_depth"] = s.PauseDepth()
	m["active"] = s.IsActive
	return m
}

func compile(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(env(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCondition, src, err)
	}
	return program, nil
}

// Condition compiles src into a condition bound to s. Evaluation errors are
// returned to the scheduler, which isolates them to the owning command.
func Condition(s *routine.Scheduler, src string) (domain.Condition, error) {
	program, err := compile(src)
	if err != nil {
		return nil, err
	}
	return func() (bool, error) {
		out, err := expr.Run(program, env(s))
		if err != nil {
			return false, err
		}
		v, ok := out.(bool)
		if !ok {
			return false, fmt.Errorf("condition %q returned %T", src, out)
		}
		return v, nil
	}, nil
}
