// Package metrics records operational counters for report runs behind a
// pluggable Backend. The default backend discards everything, so callers
// never check whether metrics are configured.
//
// Concrete systems live in subpackages (prompush, datadog) and are installed
// once at startup with SetBackend.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal           = "timeclock_step_total"
	StepDurationSeconds = "timeclock_step_duration_seconds"
	LinesTotal          = "timeclock_lines_total"
	GroupsTotal         = "timeclock_groups_total"
)

// Line kinds for RecordLines.
const (
	LinesParsed  = "parsed"
	LinesSkipped = "skipped"
)

// Group kinds for RecordGroups.
const (
	GroupsRows         = "rows"
	GroupsMissingPunch = "missing_punch"
	GroupsExcessLunch  = "excess_lunch"
	GroupsAnomalous    = "anomalous"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is what a metrics system has to implement.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, where the system needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

type holder struct{ Backend }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{nopBackend{}}) }

func backend() Backend { return current.Load().Backend }

// SetBackend installs b and returns the previous backend. A nil b leaves
// the current backend in place.
func SetBackend(b Backend) Backend {
	prev := backend()
	if b != nil {
		current.Store(&holder{b})
	}
	return prev
}

// Flush delegates to the installed backend.
func Flush() error { return backend().Flush() }

// RecordStep counts one execution of step and observes its duration, with a
// success/failure status taken from err.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := backend()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordLines counts input lines by kind (LinesParsed, LinesSkipped).
// Non-positive n is ignored.
func RecordLines(job, kind string, n int) {
	if n <= 0 {
		return
	}
	backend().IncCounter(LinesTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordGroups counts per-day groups by kind (GroupsRows, GroupsMissingPunch,
// GroupsExcessLunch, GroupsAnomalous). Non-positive n is ignored.
func RecordGroups(job, kind string, n int) {
	if n <= 0 {
		return
	}
	backend().IncCounter(GroupsTotal, float64(n), Labels{"job": job, "kind": kind})
}
