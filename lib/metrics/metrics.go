package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// OpRecorder records counts and latencies for a single backend
// instance, labeled by backend name and instance id.
type OpRecorder struct {
	backend  string
	instance string
}

// NewOpRecorder returns a recorder for one backend instance. backend
// is e.g. "hashstore", "rbtree", "bplustree"; instance is the
// backend's uuid.
func NewOpRecorder(backend, instance string) *OpRecorder {
	return &OpRecorder{backend: backend, instance: instance}
}

func (r *OpRecorder) labels(op string) string {
	return fmt.Sprintf(`{op=%q,backend=%q,instance=%q}`, op, r.backend, r.instance)
}

// Observe records one call to op (e.g. "set", "get", "delete") taking
// the given duration.
func (r *OpRecorder) Observe(op string, d time.Duration) {
	metrics.GetOrCreateCounter("keyplex_store_ops_total" + r.labels(op)).Inc()
	metrics.GetOrCreateHistogram("keyplex_store_op_duration_seconds" + r.labels(op)).Update(d.Seconds())
}

// Track starts timing op and returns a function that calls Observe
// with the elapsed time when invoked. Use as: defer rec.Track("set")().
func (r *OpRecorder) Track(op string) func() {
	start := time.Now()
	return func() {
		r.Observe(op, time.Since(start))
	}
}

// TTLRecorder records scheduler activity shared across a backend's
// TTL-bound keys.
type TTLRecorder struct {
	backend     string
	instance    string
	activeTasks atomic.Int64
}

// NewTTLRecorder returns a TTL recorder for one backend instance and
// registers its active-tasks gauge right away. VictoriaMetrics/metrics
// gauges are pull-based callbacks evaluated at scrape time rather than
// settable values, so SetActiveTasks only updates the backing atomic
// counter the callback reads.
func NewTTLRecorder(backend, instance string) *TTLRecorder {
	r := &TTLRecorder{backend: backend, instance: instance}
	metrics.GetOrCreateGauge("keyplex_scheduler_active_tasks"+r.labelSuffix(), func() float64 {
		return float64(r.activeTasks.Load())
	})
	return r
}

func (r *TTLRecorder) labelSuffix() string {
	return fmt.Sprintf(`{backend=%q,instance=%q}`, r.backend, r.instance)
}

// Fired increments the count of TTL tasks that actually ran to
// completion (i.e. deleted their key).
func (r *TTLRecorder) Fired() {
	metrics.GetOrCreateCounter("keyplex_scheduler_fired_total" + r.labelSuffix()).Inc()
}

// Cancelled increments the count of TTL tasks stopped before firing.
func (r *TTLRecorder) Cancelled() {
	metrics.GetOrCreateCounter("keyplex_scheduler_cancelled_total" + r.labelSuffix()).Inc()
}

// SetActiveTasks reports the current number of pending TTL tasks.
func (r *TTLRecorder) SetActiveTasks(n int) {
	r.activeTasks.Store(int64(n))
}
