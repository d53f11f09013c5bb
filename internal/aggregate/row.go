package aggregate

import "timeclock/internal/punch"

// Row is the attendance summary of one employee on one day.
type Row struct {
	Identifier string        `json:"identifier"`
	Date       punch.DateKey `json:"date"`

	// The four canonical punches; each is nil when absent.
	Entry1 *punch.Record `json:"entry1,omitempty"`
	Exit1  *punch.Record `json:"exit1,omitempty"`
	Entry2 *punch.Record `json:"entry2,omitempty"`
	Exit2  *punch.Record `json:"exit2,omitempty"`

	// Records is the four punches in slot order on a complete day and the
	// whole group, in file order, when a punch is missing.
	Records []punch.Record `json:"records"`

	// Duplicates holds every D00O punch of the day.
	Duplicates []punch.Record `json:"duplicates,omitempty"`

	// Others holds punches that are neither a matched slot nor a duplicate:
	// unrecognized codes and repeats of an already matched slot.
	Others []punch.Record `json:"others,omitempty"`

	Missing []punch.TypeCode `json:"missing,omitempty"`

	LunchMinutes       int  `json:"lunch_minutes"`
	ExcessLunchMinutes int  `json:"excess_lunch_minutes"`
	TotalWorkedMinutes int  `json:"total_worked_minutes"`
	HasMissingPunch    bool `json:"has_missing_punch"`

	// Anomalous is set when punches are out of chronological order and an
	// interval came out negative. Durations are left as computed.
	Anomalous bool `json:"anomalous"`
}

// Slot returns the matched punch for a canonical code, or nil.
func (r *Row) Slot(c punch.TypeCode) *punch.Record {
	switch c {
	case punch.Entry1:
		return r.Entry1
	case punch.Exit1:
		return r.Exit1
	case punch.Entry2:
		return r.Entry2
	case punch.Exit2:
		return r.Exit2
	}
	return nil
}

// Slots returns the four canonical punches in slot order.
func (r *Row) Slots() [4]*punch.Record {
	return [4]*punch.Record{r.Entry1, r.Exit1, r.Entry2, r.Exit2}
}

// Complete reports whether all four canonical punches are present.
func (r *Row) Complete() bool {
	return r.Entry1 != nil && r.Exit1 != nil && r.Entry2 != nil && r.Exit2 != nil
}

// MatchedCount returns how many of the group's records were placed in a
// slot, as a duplicate, or in Others. It always equals the group size.
func (r *Row) MatchedCount() int {
	n := len(r.Duplicates) + len(r.Others)
	for _, s := range r.Slots() {
		if s != nil {
			n++
		}
	}
	return n
}

func (r *Row) ref() GroupRef {
	var missing []punch.TypeCode
	if len(r.Missing) > 0 {
		missing = append(missing, r.Missing...)
	}
	return GroupRef{
		Identifier:         r.Identifier,
		Date:               r.Date,
		Missing:            missing,
		LunchMinutes:       r.LunchMinutes,
		ExcessLunchMinutes: r.ExcessLunchMinutes,
	}
}

// buildRow matches a group's punches to the four slots and computes the
// day's intervals.
func buildRow(g Group, th Thresholds) Row {
	row := Row{Identifier: g.Identifier, Date: g.Date}

	var slots [4]*punch.Record
	for i := range g.Records {
		rec := g.Records[i]
		switch {
		case rec.Code.IsDuplicate():
			row.Duplicates = append(row.Duplicates, rec)
		case rec.Code.IsCanonical() && slots[rec.Code.Slot()] == nil:
			slots[rec.Code.Slot()] = &rec
		default:
			row.Others = append(row.Others, rec)
		}
	}
	row.Entry1, row.Exit1, row.Entry2, row.Exit2 = slots[0], slots[1], slots[2], slots[3]

	for i, c := range punch.Canonical {
		if slots[i] == nil {
			row.Missing = append(row.Missing, c)
		}
	}
	row.HasMissingPunch = len(row.Missing) > 0

	if !row.Complete() {
		row.Records = append([]punch.Record(nil), g.Records...)
		return row
	}

	e1, s1 := row.Entry1.Time.Minutes(), row.Exit1.Time.Minutes()
	e2, s2 := row.Entry2.Time.Minutes(), row.Exit2.Time.Minutes()

	morning, lunch, afternoon := s1-e1, e2-s1, s2-e2
	row.LunchMinutes = lunch
	row.TotalWorkedMinutes = morning + afternoon
	row.ExcessLunchMinutes = max(0, lunch-th.LunchAllowanceMinutes)
	row.Anomalous = morning < 0 || lunch < 0 || afternoon < 0
	row.Records = []punch.Record{*row.Entry1, *row.Exit1, *row.Entry2, *row.Exit2}
	return row
}
