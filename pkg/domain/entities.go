// Package domain defines the work-log taxonomy (schema), the logged entries it
// classifies, and the storage contracts implemented by persistence backends.
package domain

import "time"

// TechGroup tags a technology with one of a fixed, ordered set of groups.
type TechGroup string

// Supported technology groups, in display order.
const (
	GroupLanguages TechGroup = "languages"
	GroupFrontend  TechGroup = "frontend"
	GroupBackend   TechGroup = "backend"
	GroupDatabases TechGroup = "databases"
	GroupDevOps    TechGroup = "devops"
	GroupCloud     TechGroup = "cloud"
	GroupAI        TechGroup = "ai"
	GroupTools     TechGroup = "tools"
)

var techGroupOrder = []TechGroup{
	GroupLanguages,
	GroupFrontend,
	GroupBackend,
	GroupDatabases,
	GroupDevOps,
	GroupCloud,
	GroupAI,
	GroupTools,
}

var techGroupLabels = map[TechGroup]string{
	GroupLanguages: "Languages",
	GroupFrontend:  "Frontend",
	GroupBackend:   "Backend",
	GroupDatabases: "Databases",
	GroupDevOps:    "DevOps",
	GroupCloud:     "Cloud",
	GroupAI:        "AI / ML",
	GroupTools:     "Tools",
}

// TechGroups returns the technology groups in display order.
func TechGroups() []TechGroup {
	return append([]TechGroup(nil), techGroupOrder...)
}

// Valid reports whether g is one of the supported groups.
func (g TechGroup) Valid() bool {
	_, ok := techGroupLabels[g]
	return ok
}

// Label returns the human readable group name, or the raw tag when unknown.
func (g TechGroup) Label() string {
	if label, ok := techGroupLabels[g]; ok {
		return label
	}
	return string(g)
}

// Technology is a taxonomy technology with its own sub-technology list.
type Technology struct {
	Name     string    `json:"name" yaml:"name"`
	Group    TechGroup `json:"group" yaml:"group"`
	SubTechs []string  `json:"subTechs" yaml:"subTechs"`
}

// Schema is the user-editable taxonomy used to classify entries. Collections
// keep insertion order and never hold two entries equal under case folding.
type Schema struct {
	Projects     []string     `json:"projects" yaml:"projects"`
	Categories   []string     `json:"categories" yaml:"categories"`
	Technologies []Technology `json:"technologies" yaml:"technologies"`
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	cp := Schema{
		Projects:   cloneStrings(s.Projects),
		Categories: cloneStrings(s.Categories),
	}
	if s.Technologies != nil {
		cp.Technologies = make([]Technology, len(s.Technologies))
		for i, tech := range s.Technologies {
			cp.Technologies[i] = tech.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy of the technology.
func (t Technology) Clone() Technology {
	cp := t
	cp.SubTechs = cloneStrings(t.SubTechs)
	if cp.SubTechs == nil {
		cp.SubTechs = []string{}
	}
	return cp
}

// TechnologyNames lists technology names in schema order.
func (s Schema) TechnologyNames() []string {
	names := make([]string, len(s.Technologies))
	for i, tech := range s.Technologies {
		names[i] = tech.Name
	}
	return names
}

// TeamType distinguishes solo work from team work.
type TeamType string

const (
	TeamSolo TeamType = "solo"
	TeamTeam TeamType = "team"
)

// Valid reports whether the team type is known.
func (t TeamType) Valid() bool { return t == TeamSolo || t == TeamTeam }

// TechSelection records a technology and the sub-technologies used with it.
type TechSelection struct {
	Tech     string   `json:"tech"`
	SubTechs []string `json:"subTechs"`
}

// Entry is one logged unit of work. Entries reference taxonomy items by name;
// nothing keeps those references in sync with the schema.
type Entry struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	DayNumber    int             `json:"dayNumber"`
	Project      string          `json:"project"`
	Categories   []string        `json:"categories"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Technologies []TechSelection `json:"technologies"`
	TeamType     TeamType        `json:"teamType"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	cp := e
	cp.Categories = cloneStrings(e.Categories)
	cp.Technologies = cloneSelections(e.Technologies)
	return cp
}

// Preferences remembers the last submitted form so the next one can be prefilled.
type Preferences struct {
	LastProject      string          `json:"lastProject"`
	LastCategories   []string        `json:"lastCategories"`
	LastTechnologies []TechSelection `json:"lastTechnologies"`
	LastTeamType     TeamType        `json:"lastTeamType"`
	LastTaskCount    int             `json:"lastTaskCount"`
}

// Clone returns a deep copy of the preferences.
func (p Preferences) Clone() Preferences {
	cp := p
	cp.LastCategories = cloneStrings(p.LastCategories)
	cp.LastTechnologies = cloneSelections(p.LastTechnologies)
	return cp
}

// CloneEntries deep-copies a slice of entries.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneSelections(in []TechSelection) []TechSelection {
	if in == nil {
		return nil
	}
	out := make([]TechSelection, len(in))
	for i, sel := range in {
		out[i] = TechSelection{Tech: sel.Tech, SubTechs: cloneStrings(sel.SubTechs)}
	}
	return out
}
