package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/pkg/domain"
)

// Wednesday.
var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func sel(tech string, subs ...string) domain.TechSelection {
	if subs == nil {
		subs = []string{}
	}
	return domain.TechSelection{Tech: tech, SubTechs: subs}
}

func sampleEntries() []domain.Entry {
	return []domain.Entry{
		{ID: "e1", Date: "2026-10-12", DayNumber: 3, Project: "Alpha", Categories: []string{"Feature"}, Title: "one",
			Technologies: []domain.TechSelection{sel("Go", "Gin")}, TeamType: domain.TeamSolo},
		{ID: "e2", Date: "2026-10-12", DayNumber: 3, Project: "Alpha", Categories: []string{"Bugfix"}, Title: "two",
			Technologies: []domain.TechSelection{sel("Go", "Gin", "Cobra"), sel("Redis")}, TeamType: domain.TeamTeam},
		{ID: "e3", Date: "2026-10-05", DayNumber: 2, Project: "Beta", Categories: []string{"Feature"}, Title: "three",
			Technologies: []domain.TechSelection{sel("Redis")}, TeamType: domain.TeamSolo},
		{ID: "e4", Date: "2026-09-10", DayNumber: 1, Project: "Beta", Categories: []string{"Research"}, Title: "four",
			Technologies: []domain.TechSelection{sel("Go")}, TeamType: domain.TeamSolo},
		{ID: "e5", Date: "2026-10-14", DayNumber: 4, Project: "Alpha", Categories: []string{"Feature"}, Title: "five",
			Technologies: []domain.TechSelection{sel("Postgres")}, TeamType: domain.TeamSolo},
	}
}

func ids(entries []domain.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeAll, r)

	r, err = ParseRange(" 30Days ")
	require.NoError(t, err)
	assert.Equal(t, Range30Days, r)

	_, err = ParseRange("year")
	assert.Error(t, err)
}

func TestWeekRange(t *testing.T) {
	cases := map[string]time.Time{
		"wednesday": fixedNow,
		"monday":    time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC),
		"sunday":    time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC),
	}
	for name, now := range cases {
		t.Run(name, func(t *testing.T) {
			start, end := WeekRange(now)
			assert.Equal(t, "2026-10-12", start.Format(DateLayout))
			assert.Equal(t, "2026-10-18", end.Format(DateLayout))
			assert.Equal(t, 0, start.Hour())
			assert.Equal(t, 23, end.Hour())
		})
	}
}

func TestInRange(t *testing.T) {
	cases := []struct {
		date string
		r    Range
		want bool
	}{
		{"2000-01-01", RangeAll, true},
		{"garbage", RangeAll, true},
		{"garbage", RangeWeek, false},
		{"2026-10-12", RangeWeek, true},
		{"2026-10-18", RangeWeek, true},
		{"2026-10-11", RangeWeek, false},
		{"2026-10-01", RangeMonth, true},
		{"2026-09-30", RangeMonth, false},
		{"2026-10-20", RangeMonth, false},
		{"2026-09-15", Range30Days, true},
		{"2026-09-14", Range30Days, false},
		{"2026-10-15", Range30Days, false},
		{"2026-07-17", Range90Days, true},
		{"2026-07-16", Range90Days, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, InRange(tc.date, tc.r, fixedNow), "%s in %s", tc.date, tc.r)
	}
}

func TestFilterApply(t *testing.T) {
	entries := sampleEntries()

	assert.Equal(t, []string{"e1", "e2", "e3", "e4", "e5"}, ids(Filter{}.Apply(entries, fixedNow)))
	assert.Equal(t, []string{"e1", "e2", "e5"}, ids(Filter{Range: RangeWeek}.Apply(entries, fixedNow)))
	assert.Equal(t, []string{"e1", "e2", "e3", "e5"}, ids(Filter{Range: RangeMonth}.Apply(entries, fixedNow)))
	assert.Equal(t, []string{"e3", "e4"}, ids(Filter{Range: RangeAll, Project: "Beta"}.Apply(entries, fixedNow)))
	assert.Equal(t, []string{"e1", "e3", "e5"}, ids(Filter{Project: "all", Category: "Feature"}.Apply(entries, fixedNow)))
	assert.Equal(t, []string{"e1", "e5"}, ids(Filter{Range: RangeWeek, Project: "Alpha", Category: "Feature"}.Apply(entries, fixedNow)))
	assert.Empty(t, Filter{Project: "Gamma"}.Apply(entries, fixedNow))
}

func TestDayNumber(t *testing.T) {
	entries := sampleEntries()
	assert.Equal(t, 4, DayNumber(entries, "2026-10-14"))
	assert.Equal(t, 5, DayNumber(entries, "2026-10-15"))
	assert.Equal(t, 2, DayNumber(entries, "2026-10-05"))
	assert.Equal(t, 1, DayNumber(nil, "2026-10-14"))
	assert.Equal(t, "2026-10-14", Today(fixedNow))
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleEntries(), fixedNow)
	assert.Equal(t, Stats{
		DaysLogged:    4,
		TotalTasks:    5,
		TopTech:       "Go",
		TopProject:    "Alpha",
		ThisWeekCount: 3,
	}, stats)

	assert.Equal(t, Stats{}, ComputeStats(nil, fixedNow))
}

func TestComputeStatsTiesKeepFirstSeen(t *testing.T) {
	entries := []domain.Entry{
		{Date: "2026-10-01", Project: "Zeta", Technologies: []domain.TechSelection{sel("Rust")}},
		{Date: "2026-10-02", Project: "Alpha", Technologies: []domain.TechSelection{sel("Go")}},
	}
	stats := ComputeStats(entries, fixedNow)
	assert.Equal(t, "Rust", stats.TopTech)
	assert.Equal(t, "Zeta", stats.TopProject)
}

func TestComputeCharts(t *testing.T) {
	charts := ComputeCharts(sampleEntries())

	assert.Equal(t, []DatePoint{
		{Date: "2026-09-10", Count: 1},
		{Date: "2026-10-05", Count: 1},
		{Date: "2026-10-12", Count: 2},
		{Date: "2026-10-14", Count: 1},
	}, charts.TasksOverTime)
	assert.Equal(t, []Count{{"Go", 3}, {"Redis", 2}, {"Postgres", 1}}, charts.TechUsage)
	assert.Equal(t, []Count{{"Feature", 3}, {"Bugfix", 1}, {"Research", 1}}, charts.Categories)
	assert.Equal(t, []Count{{"solo", 4}, {"team", 1}}, charts.SoloTeam)
	assert.Equal(t, []Count{{"Alpha", 3}, {"Beta", 2}}, charts.Projects)

	require.Len(t, charts.SubTechs, 3)
	assert.Equal(t, "Go", charts.SubTechs[0].Tech)
	assert.Equal(t, []Count{{"Gin", 2}, {"Cobra", 1}}, charts.SubTechs[0].Subs)
	assert.Empty(t, charts.SubTechs[1].Subs)
}

func TestComputeChartsLimits(t *testing.T) {
	var techs []domain.TechSelection
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		techs = append(techs, sel(name, "s1", "s2", "s3", "s4", "s5"))
	}
	charts := ComputeCharts([]domain.Entry{{Date: "2026-10-01", Technologies: techs}})
	assert.Len(t, charts.TechUsage, 10)
	require.Len(t, charts.SubTechs, 5)
	for _, row := range charts.SubTechs {
		assert.Len(t, row.Subs, 4)
	}
}

func TestHistory(t *testing.T) {
	groups := History(sampleEntries())
	require.Len(t, groups, 4)
	assert.Equal(t, "2026-10-14", groups[0].Date)
	assert.Equal(t, 4, groups[0].DayNumber)
	assert.Equal(t, "2026-10-12", groups[1].Date)
	assert.Equal(t, []string{"e1", "e2"}, ids(groups[1].Entries))
	assert.Equal(t, "2026-09-10", groups[3].Date)
}

func TestBuild(t *testing.T) {
	dash := Build(sampleEntries(), Filter{Project: "Beta"}, fixedNow)
	assert.Equal(t, RangeAll, dash.Filter.Range)
	assert.Equal(t, 5, dash.Stats.TotalTasks)
	assert.Equal(t, []Count{{"Beta", 2}}, dash.Charts.Projects)
	require.Len(t, dash.History, 2)

	empty := Build(nil, Filter{}, fixedNow)
	assert.NotNil(t, empty.History)
	assert.Empty(t, empty.Charts.TechUsage)
}
