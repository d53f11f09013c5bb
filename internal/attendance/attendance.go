// Package attendance is the engine entry point: it turns the raw content of
// a time-clock export into an attendance report.
//
// The pipeline is text -> records -> groups -> report, with no state kept
// between calls. Concurrent calls on different inputs are safe because every
// call owns its grouping structure.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"

	"timeclock/internal/aggregate"
	"timeclock/internal/parser"
)

// ErrUnreadable is returned by ParseReader when the input is not text. Hosts
// show it to the user as "file could not be read".
var ErrUnreadable = errors.New("file could not be read")

// Config carries the engine tunables.
type Config struct {
	Thresholds aggregate.Thresholds

	// Strict rejects data lines shorter than parser.MinWidth instead of
	// padding them.
	Strict bool
}

// DefaultConfig returns strict parsing with the 70/600 thresholds.
func DefaultConfig() Config {
	return Config{Thresholds: aggregate.DefaultThresholds(), Strict: true}
}

// Report is the engine output consumed by presentation.
type Report struct {
	Title              string               `json:"title"`
	Rows               []aggregate.Row      `json:"rows"`
	MissingPunchGroups []aggregate.GroupRef `json:"missing_punch_groups"`
	ExcessLunchGroups  []aggregate.GroupRef `json:"excess_lunch_groups"`

	// Diagnostics lists skipped data lines.
	Diagnostics []parser.Diagnostic `json:"diagnostics"`

	// Records is the number of punch lines that were decoded.
	Records int `json:"records"`

	Thresholds aggregate.Thresholds `json:"thresholds"`
}

// ParseFile decodes content and aggregates it. It never fails: malformed
// lines end up in Diagnostics, out-of-order days are flagged on their row,
// and empty content yields an empty report.
func ParseFile(content string, cfg Config) Report {
	title, recs, diags := parser.ParseLines(content, parser.Options{Strict: cfg.Strict})
	res := aggregate.Aggregate(recs, cfg.Thresholds)

	if diags == nil {
		diags = []parser.Diagnostic{}
	}
	return Report{
		Title:              title,
		Rows:               res.Rows,
		MissingPunchGroups: res.MissingPunchGroups,
		ExcessLunchGroups:  res.ExcessLunchGroups,
		Diagnostics:        diags,
		Records:            len(recs),
		Thresholds:         cfg.Thresholds,
	}
}

// ParseReader decodes r with enc and runs ParseFile on the text. The context
// is checked before decoding and before aggregation; the engine has no other
// suspension points.
func ParseReader(ctx context.Context, r io.Reader, enc parser.Encoding, cfg Config) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	text, err := parser.Decode(r, enc)
	if err != nil {
		if errors.Is(err, parser.ErrNotText) {
			return Report{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	return ParseFile(text, cfg), nil
}

// Empty reports whether the export had no punch lines at all.
func (r Report) Empty() bool {
	return r.Records == 0 && len(r.Diagnostics) == 0
}

// AnomalousRows returns the rows whose punches are out of order.
func (r Report) AnomalousRows() []aggregate.Row {
	var out []aggregate.Row
	for _, row := range r.Rows {
		if row.Anomalous {
			out = append(out, row)
		}
	}
	return out
}

// Fingerprint hashes the canonical JSON form of the report. Two runs over the
// same content and configuration produce the same value.
func (r Report) Fingerprint() uint64 {
	b, err := json.Marshal(r)
	if err != nil {
		// Report holds only strings, ints and bools.
		panic(fmt.Sprintf("attendance: marshal report: %v", err))
	}
	return xxh3.Hash(b)
}
