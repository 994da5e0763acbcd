// Package metrics is a small backend-agnostic layer for recording pipeline
// telemetry: one counter/duration pair per stage and record-level counts per
// kind. A global pluggable backend defaults to a no-op, so stages call into
// metrics unconditionally and a run without a configured backend costs
// nothing.
//
// Concrete backends (Prometheus Pushgateway, DogStatsD) live in subpackages
// and are installed once at startup via SetBackend, mirroring the registry
// pattern of the storage package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal contract metric systems implement.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes buffered metrics for backends that need it (Pushgateway,
	// statsd). Called once at the end of a run.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one pipeline stage execution: a count partitioned by
// stage and outcome, and the stage duration in seconds.
func RecordStage(stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"stage": stage, "status": status}

	backend.IncCounter("pipeline_stage_total", 1, lbls)
	backend.ObserveDuration("pipeline_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows counts records flowing through the pipeline per kind, e.g.
// "extracted", "buffered", "transformed", "loaded".
func RecordRows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("pipeline_records_total", float64(delta), Labels{"kind": kind})
}
