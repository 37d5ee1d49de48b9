package core

import (
	"worklog/internal/taxonomy"
	"worklog/pkg/domain"
)

type (
	Schema          = domain.Schema
	Entry           = domain.Entry
	Preferences     = domain.Preferences
	Target          = domain.Target
	TechGroup       = domain.TechGroup
	TechSelection   = domain.TechSelection
	PersistentStore = domain.PersistentStore
	Outcome         = taxonomy.Outcome
)
