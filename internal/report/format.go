// Package report renders attendance reports for people: HH:MM durations,
// the attendance panel's display filters (long lunch, overtime, missing
// punch) and table/CSV/JSON writers.
//
// Nothing here changes report contents; every value shown is derived from
// attendance.Report at render time.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMinutes renders a duration in minutes as HH:MM. Hours are not
// capped at 24. Negative durations (out-of-order punches) keep a leading
// minus sign instead of wrapping.
func FormatMinutes(m int) string {
	if m < 0 {
		return "-" + FormatMinutes(-m)
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatMinutesFloat is FormatMinutes for values that may be NaN or
// infinite; both render as "00:00".
func FormatMinutesFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "00:00"
	}
	return FormatMinutes(int(math.Floor(f)))
}

// ParseMinutes is the inverse of FormatMinutes.
func ParseMinutes(s string) (int, error) {
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")

	hh, mm, ok := strings.Cut(body, ":")
	if !ok || hh == "" || len(mm) != 2 {
		return 0, fmt.Errorf("parse minutes %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || strings.HasPrefix(hh, "+") {
		return 0, fmt.Errorf("parse minutes %q: bad hours", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || strings.HasPrefix(mm, "+") {
		return 0, fmt.Errorf("parse minutes %q: bad minutes", s)
	}

	total := h*60 + m
	if neg {
		total = -total
	}
	return total, nil
}
