// Package punch holds the business objects decoded from a time-clock export:
// one Record per punch line, keyed by employee identifier and calendar date.
package punch

import "fmt"

// TypeCode is the 4-character suffix of the identifier field that tells
// which slot of the working day a punch belongs to.
type TypeCode string

const (
	Entry1    TypeCode = "E01O" // morning in
	Exit1     TypeCode = "S01O" // lunch out
	Entry2    TypeCode = "E02O" // lunch in
	Exit2     TypeCode = "S02O" // evening out
	Duplicate TypeCode = "D00O" // flagged by the terminal, audit only
)

// CodeLen is the width of the type code suffix.
const CodeLen = 4

// Canonical lists the four expected punches of a day in slot order.
var Canonical = [4]TypeCode{Entry1, Exit1, Entry2, Exit2}

// IsCanonical reports whether c is one of the four daily slots.
func (c TypeCode) IsCanonical() bool {
	return c.Slot() >= 0
}

// Slot returns the index of c in Canonical, or -1.
func (c TypeCode) Slot() int {
	for i, k := range Canonical {
		if c == k {
			return i
		}
	}
	return -1
}

// IsDuplicate reports whether c marks a flagged/duplicate punch.
func (c TypeCode) IsDuplicate() bool { return c == Duplicate }

// Label is the column header used for the slot in rendered reports.
func (c TypeCode) Label() string {
	switch c {
	case Entry1:
		return "Entry 1"
	case Exit1:
		return "Exit 1"
	case Entry2:
		return "Entry 2"
	case Exit2:
		return "Exit 2"
	case Duplicate:
		return "Duplicate"
	default:
		return "Other"
	}
}

// DateKey is a calendar date rendered as DD/MM/YYYY. It is compared as an
// opaque string; no calendar or timezone validation is applied.
type DateKey string

// NewDateKey builds the DD/MM/YYYY key from its textual components.
func NewDateKey(day, month, year string) DateKey {
	return DateKey(day + "/" + month + "/" + year)
}

// TimeOfDay is minutes since midnight.
type TimeOfDay int

// NewTimeOfDay returns hour*60+minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Minutes returns t as a plain int for interval arithmetic.
func (t TimeOfDay) Minutes() int { return int(t) }

// String renders t as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Record is one parsed punch line.
type Record struct {
	Registro   string    `json:"registro"`
	Identifier string    `json:"identifier"`
	Date       DateKey   `json:"date"`
	Time       TimeOfDay `json:"time"`
	Code       TypeCode  `json:"code"`
	Message    string    `json:"message,omitempty"`

	// Line is the 1-based physical line number in the export.
	Line int `json:"line"`
}
