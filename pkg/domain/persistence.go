package domain

import "context"

// SchemaStore loads and saves the taxonomy. LoadSchema reports false when no
// schema has been stored yet.
type SchemaStore interface {
	LoadSchema(ctx context.Context) (Schema, bool, error)
	SaveSchema(ctx context.Context, schema Schema) error
}

// EntryStore loads and saves the full entry collection.
type EntryStore interface {
	LoadEntries(ctx context.Context) ([]Entry, error)
	SaveEntries(ctx context.Context, entries []Entry) error
}

// PreferenceStore loads and saves form preferences. A nil value clears them.
type PreferenceStore interface {
	LoadPreferences(ctx context.Context) (*Preferences, error)
	SavePreferences(ctx context.Context, prefs *Preferences) error
}

// PersistentStore is the storage collaborator used by the application service.
// Every save replaces the stored bucket; the last write wins.
type PersistentStore interface {
	SchemaStore
	EntryStore
	PreferenceStore
	Close() error
}
