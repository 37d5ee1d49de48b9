package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"worklog/internal/blob"
	"worklog/pkg/domain"
)

// Prefix is the key prefix under which artifacts are stored.
const Prefix = "exports/"

// Kind names what an artifact contains.
type Kind string

const (
	KindEntries Kind = "entries"
	KindSchema  Kind = "schema"
)

// Artifact is a stored export. URL is set when the store can presign.
type Artifact struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Filename string    `json:"filename"`
	Info     blob.Info `json:"blob"`
	URL      string    `json:"url,omitempty"`
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the time used for filenames.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides the artifact ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Exporter) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithURLExpiry sets the presigned URL lifetime.
func WithURLExpiry(d time.Duration) Option {
	return func(e *Exporter) { e.expiry = d }
}

// Exporter writes export artifacts to a blob store.
type Exporter struct {
	store  blob.Store
	now    func() time.Time
	newID  func() string
	expiry time.Duration
}

// NewExporter returns an exporter over store.
func NewExporter(store blob.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		expiry: blob.DefaultExpiry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportEntries stores a CSV of entries.
func (e *Exporter) ExportEntries(ctx context.Context, entries []domain.Entry) (Artifact, error) {
	data, err := EntriesCSV(entries)
	if err != nil {
		return Artifact{}, err
	}
	return e.put(ctx, KindEntries, EntriesFilename(e.now()), "text/csv", data, map[string]string{
		"rows": strconv.Itoa(len(entries)),
	})
}

// ExportSchema stores the schema as JSON.
func (e *Exporter) ExportSchema(ctx context.Context, schema domain.Schema) (Artifact, error) {
	data, err := SchemaJSON(schema)
	if err != nil {
		return Artifact{}, err
	}
	return e.put(ctx, KindSchema, SchemaFilename(e.now()), "application/json", data, map[string]string{
		"technologies": strconv.Itoa(len(schema.Technologies)),
	})
}

func (e *Exporter) put(ctx context.Context, kind Kind, filename, contentType string, data []byte, meta map[string]string) (Artifact, error) {
	id := e.newID()
	meta["kind"] = string(kind)
	key := path.Join(strings.TrimSuffix(Prefix, "/"), id, filename)
	info, err := e.store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: contentType, Metadata: meta})
	if err != nil {
		return Artifact{}, fmt.Errorf("store %s export: %w", kind, err)
	}
	art := Artifact{ID: id, Kind: kind, Filename: filename, Info: info}
	url, err := e.store.PresignURL(ctx, key, blob.SignedURLOptions{Method: "GET", Expiry: e.expiry})
	switch {
	case err == nil:
		art.URL = url
	case errors.Is(err, blob.ErrUnsupported):
	default:
		return art, fmt.Errorf("presign %s: %w", key, err)
	}
	return art, nil
}

// List returns every stored export artifact.
func (e *Exporter) List(ctx context.Context) ([]blob.Info, error) {
	infos, err := e.store.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return infos, nil
}

// Open streams a stored artifact. The caller closes the reader.
func (e *Exporter) Open(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	if !strings.HasPrefix(key, Prefix) {
		return blob.Info{}, nil, fmt.Errorf("key %q is not an export: %w", key, blob.ErrNotFound)
	}
	return e.store.Get(ctx, key)
}

// Delete removes a stored artifact and reports whether it existed.
func (e *Exporter) Delete(ctx context.Context, key string) (bool, error) {
	if !strings.HasPrefix(key, Prefix) {
		return false, nil
	}
	return e.store.Delete(ctx, key)
}
