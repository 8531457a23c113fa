package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/routine"
	routinehttp "github.com/aretw0/routine/pkg/adapters/http"
	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/observability"
	"github.com/aretw0/routine/pkg/plan"
	"github.com/aretw0/routine/pkg/registry"
	"github.com/aretw0/routine/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	PlanPath string

	// Rate overrides the plan period, in ticks per second.
	Rate float64
	// Simulate drives the routine on a virtual clock as fast as possible.
	Simulate bool
	// Resume overrides the plan resume policy ("reset" or "continue").
	Resume string

	TraceDir      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// LockWait bounds how long to wait for the routine lock in Redis.
	LockWait time.Duration

	// Serve is the listen address of the status API; empty disables it.
	Serve string

	JSON     bool
	Verbose  bool
	LogLevel string

	Stdout io.Writer
	Stderr io.Writer
}

// Result describes a completed run.
type Result struct {
	RunID  string
	Status domain.RunStatus
	Ticks  uint64
}

// Execute loads the plan, drives it to completion and returns the outcome.
// An interrupted run is not an error.
func Execute(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	logger, err := createLogger(opts)
	if err != nil {
		return nil, err
	}

	reg := registry.NewDefault(registry.WithLogger(logger))
	p, err := loadPlan(opts.PlanPath, reg)
	if err != nil {
		return nil, err
	}
	if opts.Resume != "" {
		if _, err := domain.ParseResumePolicy(opts.Resume); err != nil {
			return nil, err
		}
		p.ResumePolicy = opts.Resume
	}
	period, err := resolvePeriod(opts.Rate, p.Period)
	if err != nil {
		return nil, err
	}

	runID := observability.NewRunID()
	logger = logger.With("run_id", runID)

	metrics := prometheus.NewRegistry()
	collector, err := observability.NewCollector(metrics)
	if err != nil {
		return nil, err
	}
	board := observability.NewBoard(p.Name, runID, logger)
	hooks := []domain.LifecycleHooks{collector.Hooks(), board.Hooks()}

	backend, err := createBackend(opts)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	var rec *observability.Recorder
	if backend.store != nil {
		rec = observability.NewRecorder(backend.store, runID, observability.WithRecorderLogger(logger))
		hooks = append(hooks, rec.Hooks())
	}

	schedOpts := []routine.Option{
		routine.WithLogger(logger),
		routine.WithLifecycleHooks(domain.ChainHooks(hooks...)),
	}
	var src *clock.Manual
	if opts.Simulate {
		src = clock.NewManual(time.Now())
		schedOpts = append(schedOpts, routine.WithClock(src))
	}

	s, err := p.Build(ctx, reg, schedOpts...)
	if err != nil {
		return nil, err
	}

	if backend.locker != nil {
		unlock, err := acquireLock(ctx, backend.locker, p.Name, s.Budget(), opts.LockWait)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("unlock failed", "routine", p.Name, "error", err)
			}
		}()
	}

	if opts.Serve != "" {
		handler := routinehttp.NewHandler(board,
			routinehttp.WithStream(board),
			routinehttp.WithGatherer(metrics),
			routinehttp.WithLogger(logger),
		)
		addr, stop, err := serve(opts.Serve, handler, logger)
		if err != nil {
			return nil, err
		}
		defer stop()
		if !opts.JSON {
			printSystemMessage(opts.Stdout, "Status API on http://%s/status", addr)
		}
	}

	if !opts.JSON {
		printBanner(opts.Stdout, p, runID, s.Budget(), period, opts.Simulate)
	}

	signals := runner.NewSignalManager(ctx)
	defer signals.Stop()

	runnerOpts := []runner.Option{
		runner.WithPeriod(period),
		runner.WithLogger(logger),
		runner.WithHandler(createHandler(opts)),
	}
	var target runner.Schedulable = s
	if opts.Simulate {
		runnerOpts = append(runnerOpts, runner.WithTickSource(closedTicks()))
		target = simulated{Scheduler: s, src: src, period: period}
	}

	if err := runner.NewRunner(runnerOpts...).Run(signals.Context(), target); err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, Status: s.Status(), Ticks: s.Ticks()}
	if rec != nil {
		if err := rec.Err(); err != nil {
			return res, fmt.Errorf("trace %s: %w", runID, err)
		}
		logger.Info("trace stored", "reports", res.Ticks)
	}
	return res, nil
}

func loadPlan(path string, reg *registry.Registry) (*plan.Plan, error) {
	if path == "" {
		return nil, errors.New("no plan file given")
	}
	p, err := plan.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(reg); err != nil {
		return nil, err
	}
	return p, nil
}

func resolvePeriod(rate float64, planned time.Duration) (time.Duration, error) {
	switch {
	case rate < 0:
		return 0, fmt.Errorf("rate must be positive, got %v", rate)
	case rate > 0:
		return time.Duration(float64(time.Second) / rate), nil
	case planned > 0:
		return planned, nil
	}
	return runner.DefaultPeriod, nil
}
