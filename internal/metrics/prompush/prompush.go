// Package prompush pushes report metrics to a Prometheus Pushgateway.
//
// The CLI is a batch job with nothing to scrape, so collectors live in a
// private registry that Flush pushes once at the end of the run. Pushes are
// grouped by job name and run id; the per-input "job" label of the metrics
// package becomes the "input" label here.
package prompush

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"timeclock/internal/metrics"
)

// DefaultJob is the Pushgateway job used when none is given.
const DefaultJob = "timeclock"

// Backend is a Pushgateway metrics.Backend.
type Backend struct {
	gatewayURL string
	jobName    string
	runID      string
	client     push.HTTPDoer
	reg        *prometheus.Registry

	steps        *prometheus.CounterVec
	stepDuration *prometheus.SummaryVec
	lines        *prometheus.CounterVec
	groups       *prometheus.CounterVec
}

// Option tweaks a Backend.
type Option func(*Backend)

// WithHTTPClient replaces the client used for pushes.
func WithHTTPClient(c push.HTTPDoer) Option { return func(b *Backend) { b.client = c } }

// NewBackend registers the collectors. gatewayURL is required; an empty
// jobName becomes DefaultJob. runID, when set, is added to the grouping key.
func NewBackend(jobName, gatewayURL, runID string, opts ...Option) (*Backend, error) {
	if gatewayURL == "" {
		return nil, errors.New("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		runID:      runID,
		client:     http.DefaultClient,
		reg:        prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Report steps executed, by input, step and status.",
		}, []string{"input", "step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDurationSeconds,
			Help:       "Duration of report steps in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"input", "step", "status"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.LinesTotal,
			Help: "Export lines by kind (parsed, skipped).",
		}, []string{"input", "kind"}),
		groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.GroupsTotal,
			Help: "Per-day groups by kind (rows, missing_punch, excess_lunch, anomalous).",
		}, []string{"input", "kind"}),
	}
	for _, o := range opts {
		o(b)
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":  b.steps,
		"step summary":  b.stepDuration,
		"line counter":  b.lines,
		"group counter": b.groups,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter routes known metric names to their collectors and ignores the
// rest.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.steps.WithLabelValues(labels["job"], labels["step"], labels["status"]).Add(delta)
	case metrics.LinesTotal:
		b.lines.WithLabelValues(labels["job"], labels["kind"]).Add(delta)
	case metrics.GroupsTotal:
		b.groups.WithLabelValues(labels["job"], labels["kind"]).Add(delta)
	}
}

// ObserveHistogram records step durations; other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds {
		return
	}
	b.stepDuration.WithLabelValues(labels["job"], labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry, replacing the previous push of the same group.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Client(b.client)
	if b.runID != "" {
		p = p.Grouping("run_id", b.runID)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
