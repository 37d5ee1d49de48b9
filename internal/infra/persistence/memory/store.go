// Package memory provides an in-memory implementation of the worklog storage
// contracts. The database-backed stores embed it as their read cache and use
// its bucket codec to serialise snapshots.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"worklog/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Bucket names used by every snapshotting backend.
const (
	BucketSchema      = "schema"
	BucketEntries     = "entries"
	BucketPreferences = "preferences"
)

// Buckets lists the persisted buckets in write order.
var Buckets = []string{BucketSchema, BucketEntries, BucketPreferences}

// Snapshot captures the full persisted state. A nil Schema means no schema has
// been saved yet; a nil Preferences means none are stored.
type Snapshot struct {
	Schema      *domain.Schema      `json:"schema,omitempty"`
	Entries     []domain.Entry      `json:"entries"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Entries: domain.CloneEntries(s.Entries)}
	if s.Schema != nil {
		cp := s.Schema.Clone()
		out.Schema = &cp
	}
	if s.Preferences != nil {
		cp := s.Preferences.Clone()
		out.Preferences = &cp
	}
	return out
}

// Store keeps the persisted state in process memory.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// ImportState replaces the current state with the snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	s.state = snapshot.Clone()
	s.mu.Unlock()
}

// ExportState returns a deep copy of the current state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// LoadSchema returns the stored schema; false when none has been saved.
func (s *Store) LoadSchema(_ context.Context) (domain.Schema, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Schema == nil {
		return domain.Schema{}, false, nil
	}
	return s.state.Schema.Clone(), true, nil
}

// SaveSchema replaces the stored schema.
func (s *Store) SaveSchema(_ context.Context, schema domain.Schema) error {
	cp := schema.Clone()
	s.mu.Lock()
	s.state.Schema = &cp
	s.mu.Unlock()
	return nil
}

// LoadEntries returns a copy of the stored entries.
func (s *Store) LoadEntries(_ context.Context) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneEntries(s.state.Entries), nil
}

// SaveEntries replaces the stored entries.
func (s *Store) SaveEntries(_ context.Context, entries []domain.Entry) error {
	cp := domain.CloneEntries(entries)
	s.mu.Lock()
	s.state.Entries = cp
	s.mu.Unlock()
	return nil
}

// LoadPreferences returns the stored preferences or nil.
func (s *Store) LoadPreferences(_ context.Context) (*domain.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Preferences == nil {
		return nil, nil
	}
	cp := s.state.Preferences.Clone()
	return &cp, nil
}

// SavePreferences replaces the stored preferences; nil clears them.
func (s *Store) SavePreferences(_ context.Context, prefs *domain.Preferences) error {
	var cp *domain.Preferences
	if prefs != nil {
		v := prefs.Clone()
		cp = &v
	}
	s.mu.Lock()
	s.state.Preferences = cp
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// EncodeBucket serialises one bucket of the snapshot. It returns nil when the
// bucket holds no value and should be deleted from the backing store.
func EncodeBucket(snapshot Snapshot, bucket string) ([]byte, error) {
	var v any
	switch bucket {
	case BucketSchema:
		if snapshot.Schema == nil {
			return nil, nil
		}
		v = snapshot.Schema
	case BucketEntries:
		entries := snapshot.Entries
		if entries == nil {
			entries = []domain.Entry{}
		}
		v = entries
	case BucketPreferences:
		if snapshot.Preferences == nil {
			return nil, nil
		}
		v = snapshot.Preferences
	default:
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", bucket, err)
	}
	return data, nil
}

// DecodeBucket applies one stored bucket payload to the snapshot. Unknown
// buckets and empty payloads are ignored.
func DecodeBucket(snapshot *Snapshot, bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	switch bucket {
	case BucketSchema:
		var schema domain.Schema
		if err := json.Unmarshal(payload, &schema); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		for i := range schema.Technologies {
			if schema.Technologies[i].SubTechs == nil {
				schema.Technologies[i].SubTechs = []string{}
			}
		}
		snapshot.Schema = &schema
	case BucketEntries:
		if err := json.Unmarshal(payload, &snapshot.Entries); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
	case BucketPreferences:
		var prefs domain.Preferences
		if err := json.Unmarshal(payload, &prefs); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		snapshot.Preferences = &prefs
	}
	return nil
}
