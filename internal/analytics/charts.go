package analytics

import (
	"sort"

	"worklog/pkg/domain"
)

const (
	techUsageLimit   = 10
	subTechTechLimit = 5
	subTechSubLimit  = 4
)

// DatePoint is the number of tasks logged on one date.
type DatePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SubTechRow breaks one technology down by its most used sub-technologies.
type SubTechRow struct {
	Tech string  `json:"tech"`
	Subs []Count `json:"subs"`
}

// Charts holds every dashboard series.
type Charts struct {
	TasksOverTime []DatePoint  `json:"tasksOverTime"`
	TechUsage     []Count      `json:"techUsage"`
	Categories    []Count      `json:"categories"`
	SoloTeam      []Count      `json:"soloTeam"`
	Projects      []Count      `json:"projects"`
	SubTechs      []SubTechRow `json:"subTechs"`
}

// ComputeCharts builds the chart series from already filtered entries.
func ComputeCharts(entries []domain.Entry) Charts {
	var dates, techs, categories, teams, projects counter
	for _, e := range entries {
		dates.add(e.Date)
		for _, sel := range e.Technologies {
			techs.add(sel.Tech)
		}
		for _, c := range e.Categories {
			categories.add(c)
		}
		teams.add(string(e.TeamType))
		projects.add(e.Project)
	}

	overTime := make([]DatePoint, 0, len(dates.order))
	for _, c := range dates.inOrder() {
		overTime = append(overTime, DatePoint{Date: c.Name, Count: c.Count})
	}
	sort.Slice(overTime, func(i, j int) bool { return overTime[i].Date < overTime[j].Date })

	usage := limit(techs.sorted(), techUsageLimit)
	return Charts{
		TasksOverTime: overTime,
		TechUsage:     usage,
		Categories:    categories.inOrder(),
		SoloTeam:      teams.sorted(),
		Projects:      projects.sorted(),
		SubTechs:      subTechRows(entries, limit(usage, subTechTechLimit)),
	}
}

func subTechRows(entries []domain.Entry, top []Count) []SubTechRow {
	rows := make([]SubTechRow, 0, len(top))
	for _, tech := range top {
		var subs counter
		for _, e := range entries {
			for _, sel := range e.Technologies {
				if sel.Tech != tech.Name {
					continue
				}
				for _, sub := range sel.SubTechs {
					subs.add(sub)
				}
			}
		}
		rows = append(rows, SubTechRow{Tech: tech.Name, Subs: limit(subs.sorted(), subTechSubLimit)})
	}
	return rows
}

func limit(in []Count, n int) []Count {
	if len(in) > n {
		return in[:n]
	}
	return in
}
