package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"timeclock/internal/aggregate"
	"timeclock/internal/attendance"
	"timeclock/internal/parser"
	"timeclock/internal/punch"
)

// Format selects a renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a renderer name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q (use table, csv or json)", s)
}

// Columns is the header shared by the table and CSV renderers.
var Columns = []string{"PIS", "Date", "Entry 1", "Exit 1", "Entry 2", "Exit 2", "Lunch", "Worked", "Notes"}

// Write renders rep in the given format, keeping only rows that pass f.
func Write(w io.Writer, format Format, rep attendance.Report, f Filter) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, rep, f)
	case FormatCSV:
		return WriteCSV(w, rep, f)
	case FormatJSON:
		return WriteJSON(w, rep, f)
	}
	return fmt.Errorf("unknown format %q", format)
}

// Cells returns the display values of row in Columns order. Notes lists the
// duplicate punches as "HH:MM: message", joined by sep.
func Cells(row aggregate.Row, sep string) []string {
	cells := []string{row.Identifier, string(row.Date)}
	for _, c := range punch.Canonical {
		if s := row.Slot(c); s != nil {
			cells = append(cells, s.Time.String())
		} else {
			cells = append(cells, "")
		}
	}
	cells = append(cells, FormatMinutes(row.LunchMinutes), FormatMinutes(row.TotalWorkedMinutes))
	return append(cells, notes(row, sep))
}

func notes(row aggregate.Row, sep string) string {
	var parts []string
	for _, d := range row.Duplicates {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Time, d.Message))
	}
	if row.Anomalous {
		parts = append(parts, "punches out of order")
	}
	return strings.Join(parts, sep)
}

// -----------------------------------------------------------------------------
// Table
// -----------------------------------------------------------------------------

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	missingStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	lunchStyle     = cellStyle.Foreground(lipgloss.Color("11"))
	overtimeStyle  = cellStyle.Foreground(lipgloss.Color("10"))
	anomalousStyle = cellStyle.Foreground(lipgloss.Color("13"))
)

func rowStyle(h Highlight) lipgloss.Style {
	switch {
	case h.Has(HighlightAnomalous):
		return anomalousStyle
	case h.Has(HighlightMissing):
		return missingStyle
	case h.Has(HighlightLunch):
		return lunchStyle
	case h.Has(HighlightOvertime):
		return overtimeStyle
	}
	return cellStyle
}

// WriteTable renders the title, a bordered table and a one-line summary.
func WriteTable(w io.Writer, rep attendance.Report, f Filter) error {
	rows := Apply(rep.Rows, f, rep.Thresholds)

	styles := make([]lipgloss.Style, len(rows))
	data := make([][]string, len(rows))
	for i, r := range rows {
		styles[i] = rowStyle(Highlights(r, rep.Thresholds))
		data[i] = Cells(r, "\n")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Columns...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row >= len(styles) {
				return headerStyle
			}
			return styles[row]
		})

	if rep.Title != "" {
		if _, err := fmt.Fprintln(w, titleStyle.Render(rep.Title)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "rows: %d shown / %d total  missing punch: %d  long lunch: %d  out of order: %d  skipped lines: %d\n",
		len(rows), len(rep.Rows), len(rep.MissingPunchGroups), len(rep.ExcessLunchGroups),
		len(rep.AnomalousRows()), len(rep.Diagnostics))
	return err
}

// -----------------------------------------------------------------------------
// CSV
// -----------------------------------------------------------------------------

// WriteCSV writes a header row and one row per displayed day.
func WriteCSV(w io.Writer, rep attendance.Report, f Filter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range Apply(rep.Rows, f, rep.Thresholds) {
		if err := cw.Write(Cells(r, "; ")); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// -----------------------------------------------------------------------------
// JSON
// -----------------------------------------------------------------------------

type jsonRow struct {
	aggregate.Row
	Lunch      string   `json:"lunch"`
	Worked     string   `json:"worked"`
	Highlights []string `json:"highlights,omitempty"`
}

type jsonReport struct {
	Title              string               `json:"title"`
	Filter             Filter               `json:"filter,omitempty"`
	Thresholds         aggregate.Thresholds `json:"thresholds"`
	Records            int                  `json:"records"`
	Rows               []jsonRow            `json:"rows"`
	MissingPunchGroups []aggregate.GroupRef `json:"missing_punch_groups"`
	ExcessLunchGroups  []aggregate.GroupRef `json:"excess_lunch_groups"`
	Diagnostics        []parser.Diagnostic  `json:"diagnostics"`
	Fingerprint        string               `json:"fingerprint"`
}

func highlightNames(h Highlight) []string {
	var out []string
	for _, x := range []struct {
		flag Highlight
		name string
	}{
		{HighlightMissing, "missing"},
		{HighlightLunch, "lunch"},
		{HighlightOvertime, "overtime"},
		{HighlightAnomalous, "anomalous"},
	} {
		if h.Has(x.flag) {
			out = append(out, x.name)
		}
	}
	return out
}

// WriteJSON writes the report with formatted durations and highlight names.
func WriteJSON(w io.Writer, rep attendance.Report, f Filter) error {
	rows := Apply(rep.Rows, f, rep.Thresholds)
	out := jsonReport{
		Title:              rep.Title,
		Filter:             f,
		Thresholds:         rep.Thresholds,
		Records:            rep.Records,
		Rows:               make([]jsonRow, 0, len(rows)),
		MissingPunchGroups: rep.MissingPunchGroups,
		ExcessLunchGroups:  rep.ExcessLunchGroups,
		Diagnostics:        rep.Diagnostics,
		Fingerprint:        fmt.Sprintf("%016x", rep.Fingerprint()),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, jsonRow{
			Row:        r,
			Lunch:      FormatMinutes(r.LunchMinutes),
			Worked:     FormatMinutes(r.TotalWorkedMinutes),
			Highlights: highlightNames(Highlights(r, rep.Thresholds)),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
