package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector records scheduler activity as Prometheus metrics.
type Collector struct {
	ticks          prometheus.Counter
	commandRuns    *prometheus.CounterVec
	commandEnds    *prometheus.CounterVec
	failures       *prometheus.CounterVec
	pauses         prometheus.Counter
	pauseDepth     prometheus.Gauge
	elapsed        prometheus.Gauge
	defaultElapsed prometheus.Gauge
	activeCommands prometheus.Histogram
	finished       *prometheus.CounterVec
}

// NewCollector creates the routine metrics and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routine_ticks_total",
			Help: "Total number of scheduler ticks",
		}),
		commandRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routine_command_runs_total",
			Help: "Total number of ticks that ran a command behavior",
		}, []string{"command"}),
		commandEnds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routine_command_ends_total",
			Help: "Total number of command deactivations",
		}, []string{"command", "interrupted"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routine_collaborator_errors_total",
			Help: "Isolated condition and behavior failures",
		}, []string{"command", "phase"}),
		pauses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routine_default_pauses_total",
			Help: "Number of times the default behavior was paused",
		}),
		pauseDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routine_pause_depth",
			Help: "Number of commands currently holding the default behavior paused",
		}),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routine_elapsed_seconds",
			Help: "Time since the routine was initialized",
		}),
		defaultElapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "routine_default_elapsed_seconds",
			Help: "Running time of the default behavior clock",
		}),
		activeCommands: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routine_active_commands",
			Help:    "Commands whose conditions held, per tick",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "routine_runs_finished_total",
			Help: "Completed runs by final status",
		}, []string{"status"}),
	}

	collectors := []prometheus.Collector{
		c.ticks, c.commandRuns, c.commandEnds, c.failures, c.pauses,
		c.pauseDepth, c.elapsed, c.defaultElapsed, c.activeCommands, c.finished,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns the lifecycle hooks that feed the collector.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandRun: func(_ context.Context, e *domain.CommandEvent) {
			c.commandRuns.WithLabelValues(e.Command).Inc()
		},
		OnCommandEnd: func(_ context.Context, e *domain.CommandEvent) {
			c.commandEnds.WithLabelValues(e.Command, strconv.FormatBool(e.Interrupted)).Inc()
		},
		OnDefaultPaused: func(_ context.Context, e *domain.PauseEvent) {
			if e.Depth == 1 {
				c.pauses.Inc()
			}
			c.pauseDepth.Set(float64(e.Depth))
		},
		OnDefaultResumed: func(_ context.Context, e *domain.PauseEvent) {
			c.pauseDepth.Set(float64(e.Depth))
		},
		OnCollaboratorError: func(_ context.Context, e *domain.ErrorEvent) {
			if e.Err == nil {
				return
			}
			c.failures.WithLabelValues(e.Err.Command, string(e.Err.Phase)).Inc()
		},
		OnTick: func(_ context.Context, r *domain.TickReport) {
			c.ticks.Inc()
			c.pauseDepth.Set(float64(r.PauseDepth))
			c.elapsed.Set(r.Elapsed.Seconds())
			c.defaultElapsed.Set(r.DefaultElapsed.Seconds())
			c.activeCommands.Observe(float64(len(r.Active)))
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			c.finished.WithLabelValues(string(e.Status)).Inc()
		},
	}
}
