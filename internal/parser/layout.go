// Package parser decodes a fixed-width time-clock export into punch records.
//
// An export is one free-form title line followed by one punch per line:
//
//	cols  [0,10)  registro (terminal/record id, opaque)
//	      [10,12) day   [12,14) month   [14,18) year
//	      [18,20) hour  [20,22) minute
//	      [22,55) identifier, last 4 characters are the punch type code
//	      [55,..) free-text message
//
// Columns are counted in characters of the decoded text, so a Latin-1 export
// keeps its offsets after Decode turns it into UTF-8.
//
// Per-line problems are soft: they are returned as Diagnostic values and the
// parse continues, mirroring how the CSV readers report bad rows through an
// onError callback instead of failing the whole file.
package parser

// MinWidth is the narrowest line that carries every fixed field.
const MinWidth = 55

// Field is one fixed-width column range, half-open [Start, End).
// End == -1 means "to end of line".
type Field struct {
	Name  string
	Start int
	End   int
}

// Len returns the field width, or -1 for an open-ended field.
func (f Field) Len() int {
	if f.End < 0 {
		return -1
	}
	return f.End - f.Start
}

// Slice returns the field's characters from line. Callers guarantee that
// len(line) >= MinWidth.
func (f Field) Slice(line []rune) string {
	if f.End < 0 || f.End > len(line) {
		return string(line[f.Start:])
	}
	return string(line[f.Start:f.End])
}

var (
	FieldRegistro   = Field{Name: "registro", Start: 0, End: 10}
	FieldDay        = Field{Name: "day", Start: 10, End: 12}
	FieldMonth      = Field{Name: "month", Start: 12, End: 14}
	FieldYear       = Field{Name: "year", Start: 14, End: 18}
	FieldHour       = Field{Name: "hour", Start: 18, End: 20}
	FieldMinute     = Field{Name: "minute", Start: 20, End: 22}
	FieldIdentifier = Field{Name: "identifier", Start: 22, End: 55}
	FieldMessage    = Field{Name: "message", Start: 55, End: -1}
)

// Layout is the full record layout in column order.
var Layout = []Field{
	FieldRegistro,
	FieldDay,
	FieldMonth,
	FieldYear,
	FieldHour,
	FieldMinute,
	FieldIdentifier,
	FieldMessage,
}
