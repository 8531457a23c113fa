package clock

import "time"

// Stopwatch measures accumulated running time.
//
// It is not safe for concurrent use; the scheduler owns its stopwatches and
// only touches them from the ticking goroutine.
type Stopwatch struct {
	src       Source
	running   bool
	startedAt time.Time
	acc       time.Duration
}

// NewStopwatch returns a stopped stopwatch reading 0.
// A nil source falls back to System.
func NewStopwatch(src Source) *Stopwatch {
	if src == nil {
		src = System
	}
	return &Stopwatch{src: src}
}

// Start resumes accumulation. Starting a running stopwatch does nothing.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.running = true
	s.startedAt = s.src.Now()
}

// Stop freezes the elapsed value. Stopping a stopped stopwatch does nothing.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	s.acc += s.since()
	s.running = false
}

// Reset zeroes the elapsed value without changing whether it runs.
func (s *Stopwatch) Reset() {
	s.acc = 0
	if s.running {
		s.startedAt = s.src.Now()
	}
}

// Restart zeroes the elapsed value and starts the stopwatch.
func (s *Stopwatch) Restart() {
	s.Reset()
	s.Start()
}

// Running reports whether the stopwatch is accumulating.
func (s *Stopwatch) Running() bool { return s.running }

// Elapsed returns the accumulated running time.
func (s *Stopwatch) Elapsed() time.Duration {
	if !s.running {
		return s.acc
	}
	return s.acc + s.since()
}

// HasElapsed reports whether at least d has accumulated.
func (s *Stopwatch) HasElapsed(d time.Duration) bool {
	return s.Elapsed() >= d
}

func (s *Stopwatch) since() time.Duration {
	d := s.src.Now().Sub(s.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Seconds converts a floating-point number of seconds to a Duration.
func Seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
