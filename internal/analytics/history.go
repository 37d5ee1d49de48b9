package analytics

import (
	"sort"
	"time"

	"worklog/pkg/domain"
)

// DayGroup is the set of entries logged on one date.
type DayGroup struct {
	Date      string         `json:"date"`
	DayNumber int            `json:"dayNumber"`
	Entries   []domain.Entry `json:"entries"`
}

// History groups entries by date, newest date first. Entries keep their order
// within a day and the group's day number is taken from its first entry.
func History(entries []domain.Entry) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			i = len(groups)
			index[e.Date] = i
			groups = append(groups, DayGroup{Date: e.Date, DayNumber: e.DayNumber})
		}
		groups[i].Entries = append(groups[i].Entries, e.Clone())
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

// Dashboard bundles everything the dashboard view renders.
type Dashboard struct {
	Filter  Filter     `json:"filter"`
	Stats   Stats      `json:"stats"`
	Charts  Charts     `json:"charts"`
	History []DayGroup `json:"history"`
}

// Build computes the dashboard for entries under filter. Stats always cover
// every entry; charts and history use the filtered subset.
func Build(entries []domain.Entry, filter Filter, now time.Time) Dashboard {
	if filter.Range == "" {
		filter.Range = RangeAll
	}
	filtered := filter.Apply(entries, now)
	history := History(filtered)
	if history == nil {
		history = []DayGroup{}
	}
	return Dashboard{
		Filter:  filter,
		Stats:   ComputeStats(entries, now),
		Charts:  ComputeCharts(filtered),
		History: history,
	}
}
