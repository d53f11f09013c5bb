package parser

import (
	"errors"
	"strings"

	"timeclock/internal/punch"
)

// Diagnostic records a line that was skipped.
type Diagnostic struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
	Raw    string `json:"raw"`
}

// IdentifierField returns the raw [22,55) slice of the skipped line when it
// is wide enough to have one, for skip-log context.
func (d Diagnostic) IdentifierField() string {
	r := []rune(d.Raw)
	if len(r) <= FieldIdentifier.Start {
		return ""
	}
	end := FieldIdentifier.End
	if end > len(r) {
		end = len(r)
	}
	return strings.TrimSpace(string(r[FieldIdentifier.Start:end]))
}

// ParseLines splits content into lines and decodes it. Blank lines are
// dropped before classification; the first remaining line is the title and
// every other line is a punch. Lines that fail ParseLine are returned as
// diagnostics and never stop the parse.
func ParseLines(content string, opts Options) (string, []punch.Record, []Diagnostic) {
	var (
		title     string
		seenTitle bool
		recs      []punch.Record
		diags     []Diagnostic
	)

	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !seenTitle {
			title, seenTitle = ParseTitle(line), true
			continue
		}

		rec, err := ParseLine(line, i+1, opts)
		if err != nil {
			d := Diagnostic{Line: i + 1, Reason: "parse_error", Raw: line}
			var mle *MalformedLineError
			if errors.As(err, &mle) {
				d.Reason, d.Detail = mle.Reason, mle.Detail
			}
			diags = append(diags, d)
			continue
		}
		recs = append(recs, rec)
	}
	return title, recs, diags
}
