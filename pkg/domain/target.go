package domain

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four taxonomy collections.
type Kind string

const (
	KindProject    Kind = "project"
	KindCategory   Kind = "category"
	KindTechnology Kind = "technology"
	KindSubTech    Kind = "subtech"
)

// ParseKind maps a tag ("project", "categories", "sub-tech", ...) to a Kind.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "project", "projects":
		return KindProject, nil
	case "category", "categories":
		return KindCategory, nil
	case "technology", "technologies", "tech":
		return KindTechnology, nil
	case "subtech", "subtechs", "sub-tech", "sub-techs":
		return KindSubTech, nil
	default:
		return "", fmt.Errorf("unknown taxonomy kind %q", raw)
	}
}

// Target names a taxonomy collection. Technology is the parent technology and
// is only meaningful for KindSubTech.
type Target struct {
	Kind       Kind   `json:"kind"`
	Technology string `json:"technology,omitempty"`
}

// ProjectTarget addresses the project collection.
func ProjectTarget() Target { return Target{Kind: KindProject} }

// CategoryTarget addresses the category collection.
func CategoryTarget() Target { return Target{Kind: KindCategory} }

// TechnologyTarget addresses the technology collection.
func TechnologyTarget() Target { return Target{Kind: KindTechnology} }

// SubTechTarget addresses the sub-technologies of the named technology.
func SubTechTarget(technology string) Target {
	return Target{Kind: KindSubTech, Technology: technology}
}

// Validate checks the kind and that sub-tech targets carry a parent.
func (t Target) Validate() error {
	switch t.Kind {
	case KindProject, KindCategory, KindTechnology:
		return nil
	case KindSubTech:
		if strings.TrimSpace(t.Technology) == "" {
			return fmt.Errorf("subtech target requires a technology")
		}
		return nil
	default:
		return fmt.Errorf("unknown taxonomy kind %q", t.Kind)
	}
}

func (t Target) String() string {
	if t.Kind == KindSubTech {
		return string(t.Kind) + ":" + t.Technology
	}
	return string(t.Kind)
}
