/*
Package domain contains the core domain models of the routine scheduler.

It defines the contracts the scheduler drives (Behavior, Condition), the
declarations a caller registers (Command, Mode, Tag) and the records the
scheduler publishes (TickReport, lifecycle events). The package is kept pure
and free of I/O so that it can be shared by the runtime, the adapters and the
plan loader.

# Key Entities

  - Behavior: anything exposing Initialize / Tick / End.
  - Condition: a zero-argument boolean supplier, evaluated once per tick.
  - Command: a behavior plus AND-ed conditions, one trigger mode and tags.
  - TriggerMode: converts the condition conjunction into a run decision.
  - TickReport: the observable outcome of one scheduler tick.
*/
package domain
