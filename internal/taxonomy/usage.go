package taxonomy

import "worklog/pkg/domain"

// ProjectInUse reports whether any entry is logged against the project.
func ProjectInUse(entries []domain.Entry, name string) bool {
	key := foldKey(name)
	for _, e := range entries {
		if foldKey(e.Project) == key {
			return true
		}
	}
	return false
}

// CategoryInUse reports whether any entry carries the category.
func CategoryInUse(entries []domain.Entry, name string) bool {
	for _, e := range entries {
		if indexFold(e.Categories, name) >= 0 {
			return true
		}
	}
	return false
}

// TechInUse reports whether any entry selected the technology.
func TechInUse(entries []domain.Entry, name string) bool {
	key := foldKey(name)
	for _, e := range entries {
		for _, sel := range e.Technologies {
			if foldKey(sel.Tech) == key {
				return true
			}
		}
	}
	return false
}

// SubTechInUse reports whether any entry selected sub under technology.
func SubTechInUse(entries []domain.Entry, technology, sub string) bool {
	key := foldKey(technology)
	for _, e := range entries {
		for _, sel := range e.Technologies {
			if foldKey(sel.Tech) == key && indexFold(sel.SubTechs, sub) >= 0 {
				return true
			}
		}
	}
	return false
}

// InUse dispatches to the predicate for target's kind.
func InUse(entries []domain.Entry, target domain.Target, name string) bool {
	switch target.Kind {
	case domain.KindProject:
		return ProjectInUse(entries, name)
	case domain.KindCategory:
		return CategoryInUse(entries, name)
	case domain.KindTechnology:
		return TechInUse(entries, name)
	case domain.KindSubTech:
		return SubTechInUse(entries, target.Technology, name)
	default:
		return false
	}
}
