// Package skiplog writes the lines a parse skipped to a CSV file so they can
// be fixed at the source, and keeps a per-reason tally.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"timeclock/internal/parser"
)

// Header is the first row of every skip log.
var Header = []string{"reason", "line_number", "identifier_field", "raw_line"}

// Log appends skipped lines to one CSV file. It is not safe for concurrent
// use; the CLI keeps one Log per input.
type Log struct {
	path    string
	reasons map[string]int
	w       *csv.Writer
}

// New creates path (and its parent directories), writes Header and returns
// the log together with a close func that flushes and closes the file.
func New(path string) (*Log, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("write header %s: %w", path, err)
	}

	closeFn := func() error {
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return &Log{path: path, reasons: make(map[string]int), w: w}, closeFn, nil
}

// Add records one skipped line.
func (l *Log) Add(d parser.Diagnostic) {
	l.reasons[d.Reason]++
	_ = l.w.Write([]string{d.Reason, strconv.Itoa(d.Line), d.IdentifierField(), d.Raw})
}

// AddAll records every diagnostic in order.
func (l *Log) AddAll(diags []parser.Diagnostic) {
	for _, d := range diags {
		l.Add(d)
	}
}

// Counts returns a copy of the per-reason counters.
func (l *Log) Counts() map[string]int { return maps.Clone(l.reasons) }

// Total is the number of lines added so far.
func (l *Log) Total() int {
	n := 0
	for _, c := range l.reasons {
		n += c
	}
	return n
}

// Path is the file being written.
func (l *Log) Path() string { return l.path }

// PathFor names the skip log of input inside dir: the input's base name with
// its extension replaced by ".skipped.csv". URLs use their last path segment.
func PathFor(dir, input string) string {
	base := filepath.Base(filepath.FromSlash(input))
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "input"
	}
	return filepath.Join(dir, base+".skipped.csv")
}
