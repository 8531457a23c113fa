/*
Package ports defines the driven ports (interfaces) of the routine scheduler.

These interfaces decouple the core logic from external implementations, allowing
runs to be recorded to various storage backends and observed by various
front ends.

# Key Interfaces

  - TraceStore: Persists the tick reports of a run, keyed by run ID.
  - RunLocker: Provides distributed locking so only one process drives a routine.
  - StatusReader: Read-only view of a run used by status endpoints.
*/
package ports
