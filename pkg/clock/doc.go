// Package clock provides the stopwatches the scheduler uses to bound its run
// and to time its default behavior.
//
// A Stopwatch accumulates elapsed time while running and can be stopped,
// restarted and reset independently. All stopwatches read time from a Source,
// so tests and simulations can drive them with a Manual source instead of the
// wall clock.
package clock
