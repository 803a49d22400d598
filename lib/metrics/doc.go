// Package metrics gives every backend and the scheduler a place to
// record operation counters and latency histograms with
// github.com/VictoriaMetrics/metrics.
//
// The teacher codebase declares this exact dependency in its go.mod
// but never imports it anywhere; this package is the home it never
// got. Metrics are purely observational - nothing in this repository
// reads them back to make a decision, so a missing or double-recorded
// sample is never a correctness bug, only a monitoring gap.
package metrics
