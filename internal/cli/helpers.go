package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/routine"
	"github.com/aretw0/routine/internal/logging"
	"github.com/aretw0/routine/pkg/adapters/file"
	"github.com/aretw0/routine/pkg/adapters/redis"
	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/ports"
	"github.com/aretw0/routine/pkg/runner"
	"golang.org/x/term"
)

// DefaultLockWait bounds the wait for a routine lock held by another process.
const DefaultLockWait = 5 * time.Second

// lockSlack keeps the lock alive a little past the run budget.
const lockSlack = 30 * time.Second

// createLogger configures the application logger.
// Without an explicit level only warnings and errors reach Stderr.
func createLogger(opts RunOptions) (*slog.Logger, error) {
	if opts.LogLevel == "" {
		return logging.NewWithWriter(opts.Stderr, slog.LevelWarn, opts.JSON), nil
	}
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(opts.Stderr, level, opts.JSON), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// backend bundles the optional trace store and run lock.
type backend struct {
	store  ports.TraceStore
	locker ports.RunLocker
	close  func() error
}

func (b backend) Close() {
	if b.close != nil {
		_ = b.close()
	}
}

// createBackend selects Redis or the file store. Redis also provides the run lock.
func createBackend(opts RunOptions) (backend, error) {
	switch {
	case opts.RedisAddr != "" && opts.TraceDir != "":
		return backend{}, errors.New("--redis and --trace-dir cannot be used together")
	case opts.RedisAddr != "":
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		return backend{
			store:  store,
			locker: redis.NewLocker(store.Client(), redis.DefaultLockPrefix),
			close:  store.Close,
		}, nil
	case opts.TraceDir != "":
		return backend{store: file.NewStore(opts.TraceDir)}, nil
	}
	return backend{}, nil
}

func acquireLock(ctx context.Context, locker ports.RunLocker, key string, budget, wait time.Duration) (ports.UnlockFunc, error) {
	if wait <= 0 {
		wait = DefaultLockWait
	}
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	unlock, err := locker.Lock(lockCtx, key, budget+lockSlack)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("routine %q is already running elsewhere", key)
		}
		return nil, err
	}
	return unlock, nil
}

// createHandler picks JSON lines or the text view. The text view is verbose
// on request and only colored on a terminal.
func createHandler(opts RunOptions) runner.ReportHandler {
	if opts.JSON {
		return runner.NewJSONHandler(opts.Stdout)
	}
	return runner.NewTextHandler(opts.Stdout, runner.WithVerbose(opts.Verbose))
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// simulated advances a virtual clock by one period after every tick.
type simulated struct {
	*routine.Scheduler
	src    *clock.Manual
	period time.Duration
}

func (s simulated) Tick(ctx context.Context) error {
	if err := s.Scheduler.Tick(ctx); err != nil {
		return err
	}
	s.src.Advance(s.period)
	return nil
}

// closedTicks never blocks, so the runner ticks back to back.
func closedTicks() <-chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}

// serve starts the status API on addr and returns the bound address and a
// stop function that shuts the server down gracefully.
func serve(addr string, handler http.Handler, logger *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", "error", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
			_ = srv.Close()
		}
	}
	return ln.Addr().String(), stop, nil
}
