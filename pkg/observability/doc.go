/*
Package observability provides tools for monitoring a running routine.

Every type here plugs into the scheduler through domain.LifecycleHooks:

  - Collector exports Prometheus metrics (ticks, command activations, pause depth, failures).
  - Board keeps the latest run snapshot for status endpoints and fans tick reports out to subscribers.
  - Recorder buffers tick reports and persists them into a ports.TraceStore.

Hook sets are combined with domain.ChainHooks.
*/
package observability
