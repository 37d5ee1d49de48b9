package taxonomy

import (
	"strings"

	"worklog/pkg/domain"
)

// Reason explains why an add was declined. Declines are ordinary outcomes,
// not errors.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonEmpty             Reason = "empty"
	ReasonDuplicate         Reason = "duplicate"
	ReasonInvalidGroup      Reason = "invalid_group"
	ReasonUnknownTechnology Reason = "unknown_technology"
	ReasonInvalidTarget     Reason = "invalid_target"
)

// Collection returns the names stored in the collection target addresses.
// For technologies these are the technology names. It reports false when a
// sub-tech target names a technology that does not exist.
func Collection(s domain.Schema, target domain.Target) ([]string, bool) {
	switch target.Kind {
	case domain.KindProject:
		return s.Projects, true
	case domain.KindCategory:
		return s.Categories, true
	case domain.KindTechnology:
		return s.TechnologyNames(), true
	case domain.KindSubTech:
		idx := techIndex(s, target.Technology)
		if idx < 0 {
			return nil, false
		}
		return s.Technologies[idx].SubTechs, true
	default:
		return nil, false
	}
}

// Add appends the normalized name to the target collection and returns the
// new schema. It reports false, returning s unchanged, when the name is empty
// or already present (case-insensitively), when a technology has no valid
// group, or when a sub-tech's parent does not exist. group is only read for
// technology targets.
func Add(s domain.Schema, target domain.Target, name string, group domain.TechGroup) (domain.Schema, bool) {
	next, reason := add(s, target, Normalize(name), group)
	return next, reason == ReasonNone
}

func add(s domain.Schema, target domain.Target, name string, group domain.TechGroup) (domain.Schema, Reason) {
	if name == "" {
		return s, ReasonEmpty
	}
	if err := target.Validate(); err != nil {
		return s, ReasonInvalidTarget
	}
	existing, ok := Collection(s, target)
	if !ok {
		return s, ReasonUnknownTechnology
	}
	if indexFold(existing, name) >= 0 {
		return s, ReasonDuplicate
	}
	if target.Kind == domain.KindTechnology && !group.Valid() {
		return s, ReasonInvalidGroup
	}

	next := s.Clone()
	switch target.Kind {
	case domain.KindProject:
		next.Projects = append(next.Projects, name)
	case domain.KindCategory:
		next.Categories = append(next.Categories, name)
	case domain.KindTechnology:
		next.Technologies = append(next.Technologies, domain.Technology{Name: name, Group: group, SubTechs: []string{}})
	case domain.KindSubTech:
		idx := techIndex(next, target.Technology)
		next.Technologies[idx].SubTechs = append(next.Technologies[idx].SubTechs, name)
	}
	return next, ReasonNone
}

// Remove deletes the entry matching name (case-insensitively, after trimming)
// from the target collection. Entries referencing the name are not touched.
// It reports false, returning s unchanged, when nothing matched.
func Remove(s domain.Schema, target domain.Target, name string) (domain.Schema, bool) {
	name = strings.TrimSpace(name)
	if name == "" || target.Validate() != nil {
		return s, false
	}
	existing, ok := Collection(s, target)
	if !ok {
		return s, false
	}
	idx := indexFold(existing, name)
	if idx < 0 {
		return s, false
	}

	next := s.Clone()
	switch target.Kind {
	case domain.KindProject:
		next.Projects = removeAt(next.Projects, idx)
	case domain.KindCategory:
		next.Categories = removeAt(next.Categories, idx)
	case domain.KindTechnology:
		next.Technologies = append(next.Technologies[:idx], next.Technologies[idx+1:]...)
	case domain.KindSubTech:
		parent := techIndex(next, target.Technology)
		next.Technologies[parent].SubTechs = removeAt(next.Technologies[parent].SubTechs, idx)
	}
	return next, true
}

func techIndex(s domain.Schema, name string) int {
	key := foldKey(strings.TrimSpace(name))
	for i, tech := range s.Technologies {
		if foldKey(tech.Name) == key {
			return i
		}
	}
	return -1
}

func removeAt(items []string, idx int) []string {
	return append(items[:idx], items[idx+1:]...)
}

// LookupTechnology returns the stored spelling of the technology matching
// name case-insensitively.
func LookupTechnology(s domain.Schema, name string) (string, bool) {
	idx := techIndex(s, name)
	if idx < 0 {
		return "", false
	}
	return s.Technologies[idx].Name, true
}
