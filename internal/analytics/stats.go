package analytics

import (
	"sort"
	"time"

	"worklog/pkg/domain"
)

// Stats summarises all entries, ignoring any filter.
type Stats struct {
	DaysLogged    int    `json:"daysLogged"`
	TotalTasks    int    `json:"totalTasks"`
	TopTech       string `json:"topTech"`
	TopProject    string `json:"topProject"`
	ThisWeekCount int    `json:"thisWeekCount"`
}

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ComputeStats derives the headline numbers. TopTech and TopProject are empty
// when nothing has been logged.
func ComputeStats(entries []domain.Entry, now time.Time) Stats {
	dates := make(map[string]struct{}, len(entries))
	start, end := WeekRange(now)
	var tally counter
	var projects counter
	thisWeek := 0
	for _, e := range entries {
		dates[e.Date] = struct{}{}
		if day, err := time.ParseInLocation(DateLayout, e.Date, now.Location()); err == nil && !day.Before(start) && !day.After(end) {
			thisWeek++
		}
		for _, sel := range e.Technologies {
			tally.add(sel.Tech)
		}
		projects.add(e.Project)
	}
	stats := Stats{
		DaysLogged:    len(dates),
		TotalTasks:    len(entries),
		ThisWeekCount: thisWeek,
	}
	if top := tally.sorted(); len(top) > 0 {
		stats.TopTech = top[0].Name
	}
	if top := projects.sorted(); len(top) > 0 {
		stats.TopProject = top[0].Name
	}
	return stats
}

// counter tallies names, remembering first-seen order to break ties.
type counter struct {
	order  []string
	counts map[string]int
}

func (c *counter) add(name string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, seen := c.counts[name]; !seen {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// sorted returns counts descending; ties keep first-seen order.
func (c *counter) sorted() []Count {
	out := c.inOrder()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func (c *counter) inOrder() []Count {
	out := make([]Count, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Count{Name: name, Count: c.counts[name]})
	}
	return out
}
