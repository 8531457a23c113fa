/*
Package routine is a time-boxed scheduler for autonomous routines, such as the
fifteen second autonomous period of a competition robot.

A routine is a default behavior plus a set of commands. Every command pairs a
behavior with conditions that are AND-ed each tick, and a trigger mode that
turns that conjunction into a decision to run the behavior or to end it. The
scheduler ticks the commands, then the default behavior, until the run budget
is spent.

# Concept

The scheduler never blocks. An outer control loop (or pkg/runner) calls Tick
once per cycle. Commands keep their own trigger state, so the same mode can be
declared on many commands without them interfering. A command tagged
PauseDefault suspends the default behavior while its conditions hold and
restores the same instance afterwards; overlapping holders are counted, so the
default only comes back once the last of them lets go.

# Key Features

  - Level and edge triggers: LevelTrue, LevelFalse, EdgeTrue, EdgeFalse.
  - Exactly-once End for every deactivation, including interruption.
  - Failure isolation: a failing or panicking condition or behavior is
    reported and skipped; the tick goes on.
  - Observable: lifecycle hooks and a TickReport per tick feed metrics, traces
    and status endpoints.

# Usage

	s := routine.New(routine.WithBudget(15 * time.Second))

	if err := s.SetDefault(ctx, drive); err != nil {
		log.Fatal(err)
	}

	score := domain.NewCommand("score", arm).
		DeclareCondition(s.Between(2*time.Second, 3*time.Second)...).
		DeclareTriggerMode(domain.EdgeTrue).
		DeclareTags(domain.PauseDefault)
	if err := s.Register(ctx, score); err != nil {
		log.Fatal(err)
	}

	// Tick at 50 Hz until the budget is spent or ctx is cancelled.
	if err := s.Run(ctx, runner.WithRate(50)); err != nil {
		log.Fatal(err)
	}

Routines can also be declared in YAML and built with pkg/plan, or run from the
command line with cmd/routine.
*/
package routine
