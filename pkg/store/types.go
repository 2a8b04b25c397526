// Package store persists built graph snapshots so the daemon can skip a full
// rebuild when the content tree has not changed.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/graphlord/graphlord/pkg/graph"
)

// SchemaVersion is bumped when the persisted snapshot layout changes. A
// cached snapshot with a different version is treated as stale.
const SchemaVersion = 1

// ErrEmptyCache is returned by Load when no snapshot has been saved yet.
var ErrEmptyCache = errors.New("graph cache is empty")

// Metadata describes a persisted snapshot.
type Metadata struct {
	SchemaVersion   int       `json:"schema_version"`
	Fingerprint     string    `json:"fingerprint"`
	SourceFileCount int       `json:"source_file_count"`
	BuiltAt         time.Time `json:"built_at"`
}

// GraphCache is a persisted graph snapshot backend. The sqlite implementation
// serves single-process deployments; the redis implementation lets several
// processes share one snapshot.
type GraphCache interface {
	// IsFresh reports whether the cached snapshot matches the given content
	// fingerprint. An empty cache is not fresh, and not an error.
	IsFresh(ctx context.Context, fingerprint string) (bool, error)
	// Load returns the cached graph and its metadata, or ErrEmptyCache.
	Load(ctx context.Context) (*graph.Graph, Metadata, error)
	// Save replaces the cached snapshot.
	Save(ctx context.Context, g *graph.Graph, meta Metadata) error
	Close() error
}
