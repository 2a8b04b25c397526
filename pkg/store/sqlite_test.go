package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/graphlord/graphlord/pkg/graph"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "graphlord.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	a := graph.NewNode("algebra", "Algebra")
	a.Category = "math"
	a.Metadata = map[string]any{"difficulty": "intro"}
	g.AddNode(a)
	g.AddNode(graph.NewNode("calculus", "Calculus"))
	if err := g.AddEdge(graph.NewEdge("calculus", "algebra", graph.RelPrerequisite)); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if err := g.AddEdge(graph.NewEdge("algebra", "calculus", graph.RelLeadsTo).WithWeight(0.95)); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	return g
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := testGraph(t)
	meta := Metadata{
		Fingerprint:     "abc123",
		SourceFileCount: 2,
		BuiltAt:         time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Save(ctx, g, meta); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, gotMeta, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.NodeCount() != 2 || loaded.EdgeCount() != 2 {
		t.Fatalf("round trip lost data: %d nodes, %d edges", loaded.NodeCount(), loaded.EdgeCount())
	}
	if gotMeta.Fingerprint != "abc123" || gotMeta.SourceFileCount != 2 {
		t.Errorf("metadata mismatch: %+v", gotMeta)
	}
	if gotMeta.SchemaVersion != SchemaVersion {
		t.Errorf("schema version not stamped: %d", gotMeta.SchemaVersion)
	}

	n, ok := loaded.GetNode("algebra")
	if !ok {
		t.Fatal("algebra missing after round trip")
	}
	if n.Category != "math" {
		t.Errorf("category lost: %+v", n)
	}
	if n.Metadata["difficulty"] != "intro" {
		t.Errorf("metadata lost: %+v", n.Metadata)
	}

	edges := loaded.Edges()
	if edges[1].Weight != 0.95 || edges[1].Relationship != graph.RelLeadsTo {
		t.Errorf("edge order or fields lost: %+v", edges)
	}
}

func TestStore_IsFresh(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fresh, err := s.IsFresh(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsFresh on empty store failed: %v", err)
	}
	if fresh {
		t.Fatal("empty store must not be fresh")
	}

	if err := s.Save(ctx, testGraph(t), Metadata{Fingerprint: "abc123", BuiltAt: time.Now()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fresh, err = s.IsFresh(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsFresh failed: %v", err)
	}
	if !fresh {
		t.Error("matching fingerprint should be fresh")
	}

	fresh, err = s.IsFresh(ctx, "changed")
	if err != nil {
		t.Fatalf("IsFresh failed: %v", err)
	}
	if fresh {
		t.Error("changed fingerprint must not be fresh")
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Load(context.Background())
	if !errors.Is(err, ErrEmptyCache) {
		t.Fatalf("expected ErrEmptyCache, got %v", err)
	}
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testGraph(t), Metadata{Fingerprint: "v1", BuiltAt: time.Now()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	small := graph.New()
	small.AddNode(graph.NewNode("only", "Only"))
	if err := s.Save(ctx, small, Metadata{Fingerprint: "v2", BuiltAt: time.Now()}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, meta, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.NodeCount() != 1 || loaded.EdgeCount() != 0 {
		t.Fatalf("old snapshot leaked through: %d nodes, %d edges", loaded.NodeCount(), loaded.EdgeCount())
	}
	if meta.Fingerprint != "v2" {
		t.Errorf("metadata not replaced: %+v", meta)
	}
}
