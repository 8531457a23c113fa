package routine

import (
	"context"

	"github.com/aretw0/routine/pkg/runner"
)

// Run drives the scheduler at a fixed rate until the run is done or ctx is
// cancelled. It is a shortcut for runner.NewRunner(opts...).Run(ctx, s).
func (s *Scheduler) Run(ctx context.Context, opts ...runner.Option) error {
	return runner.NewRunner(opts...).Run(ctx, s)
}
