// Package scheduler implements the delayed-task facility every
// backend composes with to provide TTL: register a callback to run
// after a delay, cancel it before it fires, or inspect how much time
// is left.
//
// The design is a polling task pool built on goroutines: each
// registered task owns a worker goroutine that wakes on a bounded
// poll interval to check whether it has been cancelled, whether its
// deadline has passed, or whether the scheduler itself is shutting
// down. A second, separate goroutine periodically sweeps completed or
// cancelled entries out of the id->task map. A priority queue would
// be more efficient, but TTLs here are specified in whole seconds, so
// sub-100ms polling resolution is more than adequate - see spec.md
// section 4.3's note on this tradeoff.
//
// A Scheduler is owned by exactly one backend; there is no
// process-wide singleton. Callers must call Close and wait for it to
// return before letting the owning backend go out of scope, so that
// no worker goroutine outlives its backend.
package scheduler
