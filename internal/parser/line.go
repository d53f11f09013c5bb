package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"timeclock/internal/punch"
)

// Skip reasons recorded in diagnostics and skip logs.
const (
	ReasonShortLine = "short_line"
	ReasonBadDate   = "bad_date"
	ReasonBadTime   = "bad_time"
	ReasonNoCode    = "no_type_code"
)

// Options controls line decoding.
type Options struct {
	// Strict rejects lines narrower than MinWidth. When false, short lines
	// are right-padded with spaces and parsed anyway.
	Strict bool
}

// DefaultOptions returns the strict layout.
func DefaultOptions() Options { return Options{Strict: true} }

// MalformedLineError describes a data line that could not be decoded.
type MalformedLineError struct {
	Line   int
	Reason string
	Width  int
	Detail string
}

func (e *MalformedLineError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Reason, e.Detail)
	}
	return fmt.Sprintf("line %d: %s (width %d)", e.Line, e.Reason, e.Width)
}

// SplitIdentifier separates the composite [22,55) field into the employee
// identifier and the punch type code. Padding is dropped first so the code
// is always the last four visible characters.
func SplitIdentifier(field string) (string, punch.TypeCode, bool) {
	f := strings.TrimSpace(field)
	if utf8.RuneCountInString(f) < punch.CodeLen {
		return f, "", false
	}
	r := []rune(f)
	cut := len(r) - punch.CodeLen
	return strings.TrimSpace(string(r[:cut])), punch.TypeCode(r[cut:]), true
}

// ParseLine decodes one data line. lineNo is only used for error reporting
// and is copied into the record.
func ParseLine(line string, lineNo int, opts Options) (punch.Record, error) {
	r := []rune(strings.TrimRight(line, "\r"))
	if len(r) < MinWidth {
		if opts.Strict {
			return punch.Record{}, &MalformedLineError{Line: lineNo, Reason: ReasonShortLine, Width: len(r)}
		}
		r = append(r, []rune(strings.Repeat(" ", MinWidth-len(r)))...)
	}

	day, month, year := FieldDay.Slice(r), FieldMonth.Slice(r), FieldYear.Slice(r)
	if !allDigits(day) || !allDigits(month) || !allDigits(year) {
		return punch.Record{}, &MalformedLineError{
			Line: lineNo, Reason: ReasonBadDate, Width: len(r),
			Detail: fmt.Sprintf("%q", day+month+year),
		}
	}

	hh, mm := FieldHour.Slice(r), FieldMinute.Slice(r)
	if !allDigits(hh) || !allDigits(mm) {
		return punch.Record{}, &MalformedLineError{
			Line: lineNo, Reason: ReasonBadTime, Width: len(r),
			Detail: fmt.Sprintf("%q", hh+mm),
		}
	}
	hour, minute := atoi2(hh), atoi2(mm)
	if hour > 23 || minute > 59 {
		return punch.Record{}, &MalformedLineError{
			Line: lineNo, Reason: ReasonBadTime, Width: len(r),
			Detail: fmt.Sprintf("%s:%s out of range", hh, mm),
		}
	}

	id, code, ok := SplitIdentifier(FieldIdentifier.Slice(r))
	if !ok {
		return punch.Record{}, &MalformedLineError{Line: lineNo, Reason: ReasonNoCode, Width: len(r)}
	}

	return punch.Record{
		Registro:   strings.TrimSpace(FieldRegistro.Slice(r)),
		Identifier: id,
		Date:       punch.NewDateKey(day, month, year),
		Time:       punch.NewTimeOfDay(hour, minute),
		Code:       code,
		Message:    strings.TrimSpace(FieldMessage.Slice(r)),
		Line:       lineNo,
	}, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi2 converts a pre-validated run of ASCII digits.
func atoi2(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
