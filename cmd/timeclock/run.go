package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"timeclock/internal/attendance"
	"timeclock/internal/config"
	"timeclock/internal/datasource/httpds"
	"timeclock/internal/metrics"
	"timeclock/internal/parser"
	"timeclock/internal/report"
	"timeclock/internal/skiplog"
)

// job is everything processInput needs for one input.
type job struct {
	input    string
	skipPath string // empty: no skip log
	out      *bytes.Buffer
}

// run parses every input independently, up to cfg.Workers at a time, and
// writes the reports to stdout in input order. The first failing input
// cancels the rest and is returned.
func run(ctx context.Context, cfg config.Config, deps Deps, inputs []string, stdout io.Writer) error {
	if issues := config.Validate(cfg); config.HasErrors(issues) {
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				return fmt.Errorf("invalid config: %w", iss)
			}
		}
	}
	if len(inputs) == 0 {
		return errors.New("no inputs")
	}

	format, _ := report.ParseFormat(cfg.Format)
	filter, _ := report.ParseFilter(cfg.Filter)
	enc, _ := parser.ParseEncoding(cfg.Encoding)

	runID := deps.NewRunID()
	logger, err := deps.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", runID))

	backend, err := deps.NewMetrics(cfg, runID)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if backend != nil {
		prev := metrics.SetBackend(backend)
		defer metrics.SetBackend(prev)
	}

	client := httpds.NewClient(httpds.Config{Timeout: cfg.HTTPTimeout, MaxRetries: cfg.HTTPRetries})
	defer client.CloseIdleConnections()

	jobs := make([]job, len(inputs))
	skipPaths := skipLogPaths(cfg.SkippedDir, inputs)
	for i, in := range inputs {
		jobs[i] = job{input: in, skipPath: skipPaths[i], out: &bytes.Buffer{}}
	}

	logger.Info("run started", zap.Int("inputs", len(inputs)), zap.Int("workers", cfg.Workers),
		zap.String("format", string(format)), zap.String("filter", string(filter)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			return processInput(gctx, cfg, deps, client, logger, j, enc, format, filter, len(jobs) > 1)
		})
	}
	runErr := g.Wait()

	for _, j := range jobs {
		if _, err := stdout.Write(j.out.Bytes()); err != nil && runErr == nil {
			runErr = err
		}
	}

	if backend != nil {
		if err := backend.Flush(); err != nil {
			logger.Warn("metrics flush failed", zap.Error(err))
		}
	}
	if runErr != nil {
		logger.Error("run failed", zap.Error(runErr))
		return runErr
	}
	logger.Info("run finished")
	return nil
}

func processInput(
	ctx context.Context,
	cfg config.Config,
	deps Deps,
	client *httpds.Client,
	logger *zap.Logger,
	j job,
	enc parser.Encoding,
	format report.Format,
	filter report.Filter,
	banner bool,
) error {
	log := logger.With(zap.String("input", j.input))

	start := time.Now()
	rc, err := deps.Source(j.input, client).Open(ctx)
	metrics.RecordStep(j.input, "open", err, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return unreadable(j.input, err)
	}
	defer rc.Close()

	start = time.Now()
	rep, err := attendance.ParseReader(ctx, rc, enc, cfg.Attendance())
	metrics.RecordStep(j.input, "parse", err, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return unreadable(j.input, err)
	}

	metrics.RecordLines(j.input, metrics.LinesParsed, rep.Records)
	metrics.RecordLines(j.input, metrics.LinesSkipped, len(rep.Diagnostics))
	metrics.RecordGroups(j.input, metrics.GroupsRows, len(rep.Rows))
	metrics.RecordGroups(j.input, metrics.GroupsMissingPunch, len(rep.MissingPunchGroups))
	metrics.RecordGroups(j.input, metrics.GroupsExcessLunch, len(rep.ExcessLunchGroups))
	metrics.RecordGroups(j.input, metrics.GroupsAnomalous, len(rep.AnomalousRows()))

	for _, d := range rep.Diagnostics {
		log.Debug("line skipped", zap.Int("line", d.Line), zap.String("reason", d.Reason), zap.String("detail", d.Detail))
	}
	if j.skipPath != "" && len(rep.Diagnostics) > 0 {
		sl, err := writeSkipLog(j.skipPath, rep.Diagnostics)
		if err != nil {
			return err
		}
		log.Info("skip log written", zap.String("path", sl.Path()),
			zap.Int("lines", sl.Total()), zap.Any("reasons", sl.Counts()))
	}

	if banner && format == report.FormatTable {
		fmt.Fprintf(j.out, "== %s ==\n", j.input)
	}
	start = time.Now()
	err = report.Write(j.out, format, rep, filter)
	metrics.RecordStep(j.input, "render", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("render %s: %w", j.input, err)
	}
	if banner && format == report.FormatTable {
		j.out.WriteString("\n")
	}

	log.Info("report ready",
		zap.String("title", rep.Title),
		zap.Int("records", rep.Records),
		zap.Int("rows", len(rep.Rows)),
		zap.Int("missing", len(rep.MissingPunchGroups)),
		zap.Int("excess_lunch", len(rep.ExcessLunchGroups)),
		zap.Int("anomalous", len(rep.AnomalousRows())),
		zap.Int("skipped", len(rep.Diagnostics)),
		zap.String("fingerprint", fmt.Sprintf("%016x", rep.Fingerprint())),
	)
	return nil
}

// unreadable reports input as "file could not be read: <input>: <cause>",
// keeping the cause reachable through errors.Is.
func unreadable(input string, cause error) error {
	return &inputError{input: input, err: cause}
}

type inputError struct {
	input string
	err   error
}

// Error prints the ErrUnreadable prefix once even when err already carries it.
func (e *inputError) Error() string {
	msg := strings.TrimPrefix(e.err.Error(), attendance.ErrUnreadable.Error()+": ")
	return attendance.ErrUnreadable.Error() + ": " + e.input + ": " + msg
}

func (e *inputError) Unwrap() []error { return []error{attendance.ErrUnreadable, e.err} }

// writeSkipLog writes diags to path and returns the closed log for its tallies.
func writeSkipLog(path string, diags []parser.Diagnostic) (*skiplog.Log, error) {
	l, closeFn, err := skiplog.New(path)
	if err != nil {
		return nil, err
	}
	l.AddAll(diags)
	if err := closeFn(); err != nil {
		return nil, fmt.Errorf("skip log %s: %w", l.Path(), err)
	}
	return l, nil
}

// skipLogPaths names one skip log per input inside dir. A name already
// handed out gets the first free numeric suffix so concurrent workers never
// share a file.
func skipLogPaths(dir string, inputs []string) []string {
	paths := make([]string, len(inputs))
	if dir == "" {
		return paths
	}
	taken := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		p := skiplog.PathFor(dir, in)
		base := strings.TrimSuffix(p, ".skipped.csv")
		for n := 2; taken[p]; n++ {
			p = filepath.Clean(base + "-" + strconv.Itoa(n) + ".skipped.csv")
		}
		taken[p] = true
		paths[i] = p
	}
	return paths
}
