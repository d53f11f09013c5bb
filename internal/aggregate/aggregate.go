// Package aggregate folds parsed punches into one attendance row per
// employee and day.
//
// Aggregate is a pure function of its input: grouping state lives only for
// the duration of one call, group order follows the order in which keys
// first appear in the export, and "first punch wins" is decided by file
// order, never by map iteration.
package aggregate

import (
	"timeclock/internal/punch"
)

// Default thresholds, in minutes.
const (
	DefaultLunchAllowanceMinutes    = 70
	DefaultOvertimeThresholdMinutes = 600
)

// Thresholds are the configurable limits applied to a day.
type Thresholds struct {
	// LunchAllowanceMinutes is the lunch break tolerated before the excess
	// is reported.
	LunchAllowanceMinutes int `json:"lunch_allowance_minutes" yaml:"lunch_allowance_minutes"`

	// OvertimeThresholdMinutes is the worked time above which a day counts
	// as overtime. Deployments use 600 or 550.
	OvertimeThresholdMinutes int `json:"overtime_threshold_minutes" yaml:"overtime_threshold_minutes"`
}

// DefaultThresholds returns the 70/600 limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LunchAllowanceMinutes:    DefaultLunchAllowanceMinutes,
		OvertimeThresholdMinutes: DefaultOvertimeThresholdMinutes,
	}
}

// Key identifies a daily group.
type Key struct {
	Identifier string
	Date       punch.DateKey
}

// Group holds every record sharing one Key, in file order.
type Group struct {
	Key
	Records []punch.Record
}

// GroupRef points at a group listed in one of the issue lists.
type GroupRef struct {
	Identifier         string           `json:"identifier"`
	Date               punch.DateKey    `json:"date"`
	Missing            []punch.TypeCode `json:"missing,omitempty"`
	LunchMinutes       int              `json:"lunch_minutes"`
	ExcessLunchMinutes int              `json:"excess_lunch_minutes"`
}

// Result is the output of Aggregate.
type Result struct {
	Rows               []Row      `json:"rows"`
	MissingPunchGroups []GroupRef `json:"missing_punch_groups"`
	ExcessLunchGroups  []GroupRef `json:"excess_lunch_groups"`
}

// GroupRecords folds records into daily groups, preserving first-seen key
// order and file order inside each group.
func GroupRecords(recs []punch.Record) []Group {
	var groups []Group
	index := make(map[Key]int)
	for _, r := range recs {
		k := Key{Identifier: r.Identifier, Date: r.Date}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Aggregate groups recs and builds one Row per group, plus the lists of
// groups with missing punches and with an excessive lunch break.
func Aggregate(recs []punch.Record, th Thresholds) Result {
	groups := GroupRecords(recs)
	res := Result{
		Rows:               make([]Row, 0, len(groups)),
		MissingPunchGroups: []GroupRef{},
		ExcessLunchGroups:  []GroupRef{},
	}

	for _, g := range groups {
		row := buildRow(g, th)
		res.Rows = append(res.Rows, row)

		if len(row.Missing) > 0 {
			res.MissingPunchGroups = append(res.MissingPunchGroups, row.ref())
		}
		if row.ExcessLunchMinutes > 0 {
			res.ExcessLunchGroups = append(res.ExcessLunchGroups, row.ref())
		}
	}
	return res
}
