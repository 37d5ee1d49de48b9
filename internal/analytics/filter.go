// Package analytics derives dashboard statistics, chart series, and grouped
// history from logged entries. Every function is pure; the caller supplies
// the current time.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"worklog/pkg/domain"
)

// DateLayout is the entry date format.
const DateLayout = "2006-01-02"

// Range selects a window of dates relative to now.
type Range string

const (
	RangeAll    Range = "all"
	RangeWeek   Range = "week"
	RangeMonth  Range = "month"
	Range30Days Range = "30days"
	Range90Days Range = "90days"
)

// ParseRange maps a query value to a Range; empty means RangeAll.
func ParseRange(raw string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeWeek, RangeMonth, Range30Days, Range90Days:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q", raw)
	}
}

// Filter narrows entries for charts and history. Empty or "all" project and
// category values match everything.
type Filter struct {
	Range    Range  `json:"range"`
	Project  string `json:"project,omitempty"`
	Category string `json:"category,omitempty"`
}

// Apply returns the entries matching f, in their original order.
func (f Filter) Apply(entries []domain.Entry, now time.Time) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if !InRange(e.Date, f.Range, now) {
			continue
		}
		if !matchAll(f.Project) && e.Project != f.Project {
			continue
		}
		if !matchAll(f.Category) && !contains(e.Categories, f.Category) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchAll(v string) bool { return v == "" || v == "all" }

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

// WeekRange returns Monday 00:00 through Sunday 23:59:59.999 of the week
// containing now, in now's location.
func WeekRange(now time.Time) (time.Time, time.Time) {
	offset := int(now.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset = 6
	}
	y, m, d := now.Date()
	monday := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
	sunday := time.Date(y, m, d-offset+6, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return monday, sunday
}

// InRange reports whether the YYYY-MM-DD date falls inside r. Unparseable
// dates only match RangeAll.
func InRange(date string, r Range, now time.Time) bool {
	if r == RangeAll || r == "" {
		return true
	}
	day, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	endOfToday := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), now.Location())
	var start, end time.Time
	switch r {
	case RangeWeek:
		start, end = WeekRange(now)
	case RangeMonth:
		start, end = time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), endOfToday
	case Range30Days:
		start, end = endOfToday.AddDate(0, 0, -30), endOfToday
	case Range90Days:
		start, end = endOfToday.AddDate(0, 0, -90), endOfToday
	default:
		return true
	}
	return !day.Before(start) && !day.After(end)
}

// Today formats now as an entry date.
func Today(now time.Time) string { return now.Format(DateLayout) }

// DayNumber returns the 1-based position of today among the distinct logged
// dates, or the next number when today has not been logged yet.
func DayNumber(entries []domain.Entry, today string) int {
	dates := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		dates[e.Date] = struct{}{}
	}
	if _, ok := dates[today]; !ok {
		return len(dates) + 1
	}
	n := 1
	for date := range dates {
		if date < today {
			n++
		}
	}
	return n
}
