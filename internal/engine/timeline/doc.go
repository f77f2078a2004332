// Package timeline provides month-granularity time axes for the dashboard.
//
// Months are plain integers (year*12 + month-1) so stepping, clamping and
// distance checks are ordinary arithmetic; the wire format is "YYYY-MM".
// An Axis is a small state machine (Unbounded -> Bounded) owning the current
// month for one of the two independent timelines: the global map month and
// the per-feature panel month. Axes do no locking of their own; the engine
// serializes access.
package timeline
