package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"timeclock/internal/logging"
	"timeclock/internal/parser"
	"timeclock/internal/report"
)

// IssueSeverity is how bad an Issue is.
type IssueSeverity string

const (
	// SeverityError blocks a run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is printed but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one validation finding. Path is the YAML key it concerns.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// commonOvertimeThresholds are the values deployed sites have used.
var commonOvertimeThresholds = []int{550, 600}

// Validate lints cfg without changing it.
func Validate(cfg Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.LunchAllowanceMinutes <= 0 {
		add(SeverityError, "lunch_allowance_minutes", "must be positive, got %d", cfg.LunchAllowanceMinutes)
	}
	if cfg.OvertimeThresholdMinutes <= 0 {
		add(SeverityError, "overtime_threshold_minutes", "must be positive, got %d", cfg.OvertimeThresholdMinutes)
	} else if !slices.Contains(commonOvertimeThresholds, cfg.OvertimeThresholdMinutes) {
		add(SeverityWarning, "overtime_threshold_minutes", "%d is unusual; deployments use 550 or 600", cfg.OvertimeThresholdMinutes)
	}
	if cfg.LunchAllowanceMinutes > 0 && cfg.OvertimeThresholdMinutes > 0 &&
		cfg.LunchAllowanceMinutes >= cfg.OvertimeThresholdMinutes {
		add(SeverityWarning, "lunch_allowance_minutes", "allowance %d is not below the overtime threshold %d",
			cfg.LunchAllowanceMinutes, cfg.OvertimeThresholdMinutes)
	}

	if _, err := parser.ParseEncoding(cfg.Encoding); err != nil {
		add(SeverityError, "encoding", "%v", err)
	}
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		add(SeverityError, "format", "%v", err)
	}
	if _, err := report.ParseFilter(cfg.Filter); err != nil {
		add(SeverityError, "filter", "%v", err)
	}
	if cfg.Workers < 1 {
		add(SeverityError, "workers", "must be at least 1, got %d", cfg.Workers)
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		add(SeverityError, "log_level", "%v", err)
	}

	switch cfg.MetricsBackend {
	case MetricsNone, "":
	case MetricsPrompush:
		if u, err := url.Parse(cfg.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			add(SeverityError, "pushgateway_url", "want an absolute URL, got %q", cfg.PushgatewayURL)
		}
	case MetricsDatadog:
		if strings.TrimSpace(cfg.DatadogAddr) == "" {
			add(SeverityError, "datadog_addr", "required when metrics_backend is datadog")
		}
	default:
		add(SeverityError, "metrics_backend", "unknown backend %q (use none, prompush or datadog)", cfg.MetricsBackend)
	}

	if cfg.HTTPTimeout <= 0 {
		add(SeverityError, "http_timeout", "must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.HTTPRetries < 0 {
		add(SeverityError, "http_retries", "must not be negative, got %d", cfg.HTTPRetries)
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	return slices.ContainsFunc(issues, func(i Issue) bool { return i.Severity == SeverityError })
}
