package report

import (
	"fmt"
	"strings"

	"timeclock/internal/aggregate"
)

// Filter selects which rows are displayed.
type Filter string

const (
	FilterAll      Filter = ""
	FilterLunch    Filter = "lunch"    // lunch longer than the allowance
	FilterOvertime Filter = "overtime" // worked time above the overtime threshold
	FilterMissing  Filter = "missing"  // at least one canonical punch absent
)

// ParseFilter accepts the filter names plus "all".
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterLunch, FilterOvertime, FilterMissing:
		return f, nil
	case "all":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q (use all, lunch, overtime or missing)", s)
}

// Match reports whether row passes f.
func (f Filter) Match(row aggregate.Row, th aggregate.Thresholds) bool {
	switch f {
	case FilterLunch:
		return row.LunchMinutes > th.LunchAllowanceMinutes
	case FilterOvertime:
		return row.TotalWorkedMinutes > th.OvertimeThresholdMinutes
	case FilterMissing:
		return row.HasMissingPunch
	}
	return true
}

// Apply returns the rows that pass f, in order.
func Apply(rows []aggregate.Row, f Filter, th aggregate.Thresholds) []aggregate.Row {
	if f == FilterAll {
		return rows
	}
	out := make([]aggregate.Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r, th) {
			out = append(out, r)
		}
	}
	return out
}

// Highlight is a display flag computed per row.
type Highlight uint8

const (
	HighlightMissing Highlight = 1 << iota
	HighlightLunch
	HighlightOvertime
	HighlightAnomalous
)

// Highlights returns every flag that applies to row.
func Highlights(row aggregate.Row, th aggregate.Thresholds) Highlight {
	var h Highlight
	if row.HasMissingPunch {
		h |= HighlightMissing
	}
	if FilterLunch.Match(row, th) {
		h |= HighlightLunch
	}
	if FilterOvertime.Match(row, th) {
		h |= HighlightOvertime
	}
	if row.Anomalous {
		h |= HighlightAnomalous
	}
	return h
}

// Has reports whether flag is set in h.
func (h Highlight) Has(flag Highlight) bool { return h&flag != 0 }
