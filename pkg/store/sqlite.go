package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/graphlord/graphlord/pkg/graph"
)

// Store is the SQLite-backed GraphCache.
type Store struct {
	db *sql.DB
}

var _ GraphCache = (*Store)(nil)

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// One snapshot per database: a single meta row, plus the node and edge
	// tables. Node payloads are stored as JSON blobs; edge columns are
	// explicit since edges are flat and ordered.
	query := `
	CREATE TABLE IF NOT EXISTS graph_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		source_file_count INTEGER NOT NULL,
		built_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		payload JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS edges (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		relationship TEXT NOT NULL,
		weight REAL NOT NULL,
		origin TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshot tables: %w", err)
	}
	return nil
}

// IsFresh compares the stored fingerprint and schema version against the
// current content fingerprint.
func (s *Store) IsFresh(ctx context.Context, fingerprint string) (bool, error) {
	var storedVersion int
	var storedFingerprint string
	err := s.db.QueryRowContext(ctx,
		"SELECT schema_version, fingerprint FROM graph_meta WHERE id = 1",
	).Scan(&storedVersion, &storedFingerprint)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read graph meta: %w", err)
	}
	return storedVersion == SchemaVersion && storedFingerprint == fingerprint, nil
}

// Load reads the cached snapshot back into a graph.
func (s *Store) Load(ctx context.Context) (*graph.Graph, Metadata, error) {
	var meta Metadata
	err := s.db.QueryRowContext(ctx,
		"SELECT schema_version, fingerprint, source_file_count, built_at FROM graph_meta WHERE id = 1",
	).Scan(&meta.SchemaVersion, &meta.Fingerprint, &meta.SourceFileCount, &meta.BuiltAt)
	if err == sql.ErrNoRows {
		return nil, Metadata{}, ErrEmptyCache
	}
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read graph meta: %w", err)
	}

	g := graph.New()

	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM nodes")
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, Metadata{}, fmt.Errorf("failed to scan node: %w", err)
		}
		var n graph.Node
		if err := json.Unmarshal(payload, &n); err != nil {
			return nil, Metadata{}, fmt.Errorf("failed to unmarshal node: %w", err)
		}
		g.AddNode(n)
	}
	if err := rows.Err(); err != nil {
		return nil, Metadata{}, fmt.Errorf("node iteration failed: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx,
		"SELECT from_id, to_id, relationship, weight, origin FROM edges ORDER BY seq",
	)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e graph.Edge
		var rel, origin string
		if err := edgeRows.Scan(&e.From, &e.To, &rel, &e.Weight, &origin); err != nil {
			return nil, Metadata{}, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Relationship = graph.Relationship(rel)
		e.Origin = graph.EdgeOrigin(origin)
		if err := g.AddEdge(e); err != nil {
			return nil, Metadata{}, fmt.Errorf("cached edge references missing node: %w", err)
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, Metadata{}, fmt.Errorf("edge iteration failed: %w", err)
	}

	return g, meta, nil
}

// Save replaces the snapshot in a single transaction.
func (s *Store) Save(ctx context.Context, g *graph.Graph, meta Metadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"graph_meta", "nodes", "edges"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (id, payload) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()
	for _, n := range g.Nodes() {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to marshal node %s: %w", n.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, n.ID, payload); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO edges (from_id, to_id, relationship, weight, origin) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()
	for _, e := range g.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, e.From, e.To, e.Relationship.Name(), e.Weight, string(e.Origin)); err != nil {
			return fmt.Errorf("failed to insert edge %s->%s: %w", e.From, e.To, err)
		}
	}

	meta.SchemaVersion = SchemaVersion
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO graph_meta (id, schema_version, fingerprint, source_file_count, built_at) VALUES (1, ?, ?, ?, ?)",
		meta.SchemaVersion, meta.Fingerprint, meta.SourceFileCount, meta.BuiltAt,
	); err != nil {
		return fmt.Errorf("failed to insert graph meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
