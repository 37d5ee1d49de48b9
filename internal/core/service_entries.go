package core

import (
	"context"
	"strings"

	"worklog/internal/analytics"
	"worklog/pkg/domain"
)

// TaskInput is one task of the log form.
type TaskInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Categories   []string        `json:"categories"`
	Technologies []TechSelection `json:"technologies"`
	TeamType     domain.TeamType `json:"teamType"`
}

// LogInput is a submitted log form: one project and its tasks.
type LogInput struct {
	Project string      `json:"project"`
	Tasks   []TaskInput `json:"tasks"`
}

func (in LogInput) validate() error {
	verr := &ValidationError{}
	if len(in.Tasks) == 0 {
		verr.Form = "at least one task is required"
	}
	for i, task := range in.Tasks {
		switch {
		case strings.TrimSpace(task.Title) == "":
			verr.task(i, "title is required")
		case task.TeamType != "" && !task.TeamType.Valid():
			verr.task(i, "unknown team type "+string(task.TeamType))
		}
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// LogTasks appends one entry per task stamped with today's date and day
// number, and remembers the first task's choices for the next form. Every
// task needs a title; a *ValidationError lists the ones missing it.
func (s *Service) LogTasks(ctx context.Context, in LogInput) ([]Entry, error) {
	var created []Entry
	err := s.run(ctx, "log_tasks", func(context.Context) error {
		if err := in.validate(); err != nil {
			return err
		}
		if err := s.lockOpen(); err != nil {
			return err
		}
		defer s.unlock()

		now := s.clock.Now().UTC()
		today := analytics.Today(now)
		day := analytics.DayNumber(s.entries, today)
		project := strings.TrimSpace(in.Project)

		created = make([]Entry, 0, len(in.Tasks))
		for _, task := range in.Tasks {
			team := task.TeamType
			if team == "" {
				team = domain.TeamSolo
			}
			entry := domain.Entry{
				ID:           s.newID(),
				Date:         today,
				DayNumber:    day,
				Project:      project,
				Categories:   nonNilStrings(task.Categories),
				Title:        strings.TrimSpace(task.Title),
				Description:  strings.TrimSpace(task.Description),
				Technologies: nonNilSelections(task.Technologies),
				TeamType:     team,
				CreatedAt:    now,
			}
			created = append(created, entry.Clone())
			s.entries = append(s.entries, entry)
		}

		first := created[0].Clone()
		s.prefs = &domain.Preferences{
			LastProject:      project,
			LastCategories:   first.Categories,
			LastTechnologies: first.Technologies,
			LastTeamType:     first.TeamType,
			LastTaskCount:    len(in.Tasks),
		}

		s.saveEntriesLocked()
		s.savePreferencesLocked()
		s.logger.Info("tasks logged", "count", len(created), "date", today, "day", day)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Dashboard computes statistics over every entry and charts plus history
// over the entries matching filter.
func (s *Service) Dashboard(filter analytics.Filter) analytics.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Build(s.entries, filter, s.clock.Now().UTC())
}

func nonNilStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNilSelections(in []TechSelection) []TechSelection {
	out := make([]TechSelection, 0, len(in))
	for _, sel := range in {
		tech := strings.TrimSpace(sel.Tech)
		if tech == "" {
			continue
		}
		out = append(out, TechSelection{Tech: tech, SubTechs: nonNilStrings(sel.SubTechs)})
	}
	return out
}
