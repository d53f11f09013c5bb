// Package config holds every tunable of the timeclock CLI. Values come from
// three layers, lowest first:
//
//  1. an optional YAML file (--config / TIMECLOCK_CONFIG),
//  2. environment variables, which seed each flag's default,
//  3. explicit command-line flags.
//
// For tests, LoadFromArgs keeps everything hermetic:
//
//	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"--workers=2"})
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"timeclock/internal/aggregate"
	"timeclock/internal/attendance"
	"timeclock/internal/parser"
)

// Metrics backends.
const (
	MetricsNone     = "none"
	MetricsPrompush = "prompush"
	MetricsDatadog  = "datadog"
)

// Config is plain data; copy it freely once loaded.
type Config struct {
	ConfigFile string

	// Engine
	Encoding                 string
	LunchAllowanceMinutes    int
	OvertimeThresholdMinutes int
	Strict                   bool

	// Output
	Format     string
	Filter     string
	SkippedDir string // empty disables skip logs
	Workers    int

	// Logging
	LogLevel string
	LogJSON  bool

	// Metrics
	MetricsBackend string
	PushgatewayURL string
	DatadogAddr    string

	// Remote inputs
	HTTPTimeout time.Duration
	HTTPRetries int
}

// binding ties a flag to its environment variable and YAML key.
type binding struct {
	Flag, Env, YAML string
}

var bindings = []binding{
	{"encoding", "TIMECLOCK_ENCODING", "encoding"},
	{"lunch-allowance", "LUNCH_ALLOWANCE_MINUTES", "lunch_allowance_minutes"},
	{"overtime-threshold", "OVERTIME_THRESHOLD_MINUTES", "overtime_threshold_minutes"},
	{"strict", "STRICT_WIDTH", "strict"},
	{"format", "OUTPUT_FORMAT", "format"},
	{"filter", "REPORT_FILTER", "filter"},
	{"skipped-dir", "SKIPPED_DIR", "skipped_dir"},
	{"workers", "WORKERS", "workers"},
	{"log-level", "LOG_LEVEL", "log_level"},
	{"log-json", "LOG_JSON", "log_json"},
	{"metrics-backend", "METRICS_BACKEND", "metrics_backend"},
	{"pushgateway-url", "PUSHGATEWAY_URL", "pushgateway_url"},
	{"datadog-addr", "DD_AGENT_ADDR", "datadog_addr"},
	{"http-timeout", "HTTP_TIMEOUT", "http_timeout"},
	{"http-retries", "HTTP_RETRIES", "http_retries"},
}

// Bind defines every flag on fs, seeding defaults from getenv, and returns
// the Config the flags write into. Parsing is left to the caller (cobra, or
// LoadFromArgs).
func Bind(fs *pflag.FlagSet, getenv func(string) string) *Config {
	cfg := &Config{}

	str := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	num := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return i
			}
		}
		return d
	}
	flag := func(k string, d bool) bool {
		switch strings.ToLower(strings.TrimSpace(getenv(k))) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
		return d
	}
	dur := func(k string, d time.Duration) time.Duration {
		if v := getenv(k); v != "" {
			if x, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
				return x
			}
		}
		return d
	}

	fs.StringVar(&cfg.ConfigFile, "config", getenv("TIMECLOCK_CONFIG"), "YAML file with defaults (below env and flags)")

	fs.StringVar(&cfg.Encoding, "encoding", str("TIMECLOCK_ENCODING", string(parser.EncodingAuto)), "input encoding: auto, utf-8, latin1 or windows-1252")
	fs.IntVar(&cfg.LunchAllowanceMinutes, "lunch-allowance", num("LUNCH_ALLOWANCE_MINUTES", aggregate.DefaultLunchAllowanceMinutes), "lunch minutes allowed before the excess is flagged")
	fs.IntVar(&cfg.OvertimeThresholdMinutes, "overtime-threshold", num("OVERTIME_THRESHOLD_MINUTES", aggregate.DefaultOvertimeThresholdMinutes), "worked minutes above which a day is overtime")
	fs.BoolVar(&cfg.Strict, "strict", flag("STRICT_WIDTH", true), "reject lines narrower than the fixed layout instead of padding them")

	fs.StringVar(&cfg.Format, "format", str("OUTPUT_FORMAT", "table"), "output format: table, csv or json")
	fs.StringVar(&cfg.Filter, "filter", str("REPORT_FILTER", ""), "row filter: all, lunch, overtime or missing")
	fs.StringVar(&cfg.SkippedDir, "skipped-dir", str("SKIPPED_DIR", ""), "directory for skipped-line CSV logs (empty disables)")
	fs.IntVar(&cfg.Workers, "workers", num("WORKERS", 4), "inputs processed in parallel")

	fs.StringVar(&cfg.LogLevel, "log-level", str("LOG_LEVEL", "info"), "log level: debug, info, warn or error")
	fs.BoolVar(&cfg.LogJSON, "log-json", flag("LOG_JSON", false), "log as JSON instead of console text")

	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", str("METRICS_BACKEND", MetricsNone), "metrics backend: none, prompush or datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", str("PUSHGATEWAY_URL", "http://localhost:9091"), "Prometheus Pushgateway URL")
	fs.StringVar(&cfg.DatadogAddr, "datadog-addr", str("DD_AGENT_ADDR", "127.0.0.1:8125"), "DogStatsD address")

	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", dur("HTTP_TIMEOUT", 30*time.Second), "timeout per HTTP request for URL inputs")
	fs.IntVar(&cfg.HTTPRetries, "http-retries", num("HTTP_RETRIES", 3), "retries for URL inputs on 5xx/429")

	return cfg
}

// ApplyFile reads the YAML file at path and sets every flag that neither the
// command line nor the environment already set. Unknown keys are errors.
// An empty path is a no-op.
func ApplyFile(fs *pflag.FlagSet, getenv func(string) string, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	var unknown []string
	for key := range doc {
		if !slices.ContainsFunc(bindings, func(bd binding) bool { return bd.YAML == key }) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(unknown, ", "))
	}

	for _, bd := range bindings {
		node, ok := doc[bd.YAML]
		if !ok || fs.Changed(bd.Flag) || getenv(bd.Env) != "" {
			continue
		}
		if node.Kind != yaml.ScalarNode {
			return fmt.Errorf("config file %s: %s: want a scalar value (line %d)", path, bd.YAML, node.Line)
		}
		if err := fs.Set(bd.Flag, node.Value); err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, bd.YAML, err)
		}
	}
	return nil
}

// LoadFromArgs binds flags on fs, parses args and applies the config file.
func LoadFromArgs(fs *pflag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := Bind(fs, getenv)
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := ApplyFile(fs, getenv, cfg.ConfigFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Thresholds returns the aggregation thresholds.
func (c Config) Thresholds() aggregate.Thresholds {
	return aggregate.Thresholds{
		LunchAllowanceMinutes:    c.LunchAllowanceMinutes,
		OvertimeThresholdMinutes: c.OvertimeThresholdMinutes,
	}
}

// Attendance returns the engine configuration.
func (c Config) Attendance() attendance.Config {
	return attendance.Config{Thresholds: c.Thresholds(), Strict: c.Strict}
}
