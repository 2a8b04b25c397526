package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/graphlord/graphlord/pkg/graph"
	"github.com/graphlord/graphlord/pkg/store"
)

func writeContent(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func markdownBuilder(contentDir string) *Builder[MarkdownNode, MarkdownEdges] {
	return New(MarkdownExtractor{}).WithContentPath(contentDir)
}

func TestBuild_TwoPhase(t *testing.T) {
	dir := t.TempDir()
	// concept-a references concept-b before it exists in walk order.
	writeContent(t, dir, "concept-a.md",
		"---\ntitle: Concept A\ncategory: basics\nprerequisites:\n  - concept-b\n---\n\n# Concept A\n")
	writeContent(t, dir, "concept-b.md",
		"---\ntitle: Concept B\ncategory: fundamentals\n---\n\n# Concept B\n")

	g, stats, err := markdownBuilder(dir).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if stats.FilesProcessed != 2 || stats.NodesCreated != 2 {
		t.Fatalf("stats: %+v", stats)
	}
	if !g.ContainsNode("concept-a") || !g.ContainsNode("concept-b") {
		t.Fatal("nodes missing")
	}
	if stats.EdgesCreated < 1 {
		t.Fatalf("expected at least one edge, stats: %+v", stats)
	}
	if len(stats.DanglingRefs) != 0 {
		t.Errorf("unexpected dangling refs: %v", stats.DanglingRefs)
	}
	if stats.FromCache {
		t.Error("fresh build must not report from_cache")
	}
}

func TestBuild_DanglingRefs(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "orphan.md",
		"---\ntitle: Orphan\nprerequisites:\n  - nonexistent\n---\n\n# Orphan\n")

	g, stats, err := markdownBuilder(dir).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if stats.NodesCreated != 1 {
		t.Fatalf("expected 1 node, got %d", stats.NodesCreated)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("dangling edge must not be inserted, got %d edges", g.EdgeCount())
	}
	if len(stats.DanglingRefs) == 0 || !strings.Contains(stats.DanglingRefs[0], "nonexistent") {
		t.Fatalf("expected dangling ref naming the missing id, got %v", stats.DanglingRefs)
	}
}

func TestBuild_MirrorEdgesNotDeduped(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "a.md", "---\ntitle: A\nrelated:\n  - b\n---\n\n# A\n")
	writeContent(t, dir, "b.md", "---\ntitle: B\nrelated:\n  - a\n---\n\n# B\n")

	g, stats, err := markdownBuilder(dir).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// a->b and b->a are distinct keys; both survive.
	if g.EdgeCount() != 2 || stats.EdgesCreated != 2 {
		t.Fatalf("expected 2 edges, got %d (stats %+v)", g.EdgeCount(), stats)
	}
	if stats.DedupedEdges != 0 {
		t.Errorf("mirror edges must not count as dupes: %+v", stats)
	}
}

func TestBuild_DuplicateTripleDeduped(t *testing.T) {
	dir := t.TempDir()
	// Frontmatter `related` and a body wiki-link declare the same triple.
	writeContent(t, dir, "a.md", "---\ntitle: A\nrelated:\n  - b\n---\n\nSee [[b]].\n")
	writeContent(t, dir, "b.md", "---\ntitle: B\n---\n\n# B\n")

	g, stats, err := markdownBuilder(dir).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected duplicate triple collapsed to 1 edge, got %d", g.EdgeCount())
	}
	if stats.DedupedEdges != 1 {
		t.Errorf("expected 1 deduped edge, got %d", stats.DedupedEdges)
	}
}

func TestBuild_MissingContentPath(t *testing.T) {
	_, _, err := New(MarkdownExtractor{}).Build(context.Background())
	if !errors.Is(err, ErrNoContentPath) {
		t.Fatalf("expected ErrNoContentPath, got %v", err)
	}
}

func TestBuild_EmptyDirectory(t *testing.T) {
	g, stats, err := markdownBuilder(t.TempDir()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if g.NodeCount() != 0 || stats.FilesProcessed != 0 {
		t.Fatalf("expected empty graph, got %d nodes", g.NodeCount())
	}
}

func TestBuild_ErrorModes(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "valid.md", "---\ntitle: Valid\n---\n\nContent\n")
	// Delimiters present but YAML is garbage.
	writeContent(t, dir, "broken.md", "---\n{{not: yaml: at: all}}\n---\n\nContent\n")

	_, _, err := markdownBuilder(dir).WithErrorMode(FailFast).Build(context.Background())
	if err == nil {
		t.Fatal("FailFast should surface the malformed file")
	}

	g, stats, err := markdownBuilder(dir).WithErrorMode(Collect).Build(context.Background())
	if err != nil {
		t.Fatalf("Collect mode must not fail: %v", err)
	}
	if stats.FilesProcessed != 2 || stats.FilesSkipped != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	if len(stats.Errors) != 1 || !strings.Contains(stats.Errors[0].File, "broken.md") {
		t.Fatalf("expected broken.md in errors, got %+v", stats.Errors)
	}
	if !g.ContainsNode("valid") {
		t.Error("valid file should still produce its node")
	}
}

func TestBuild_ManualEdges(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "a.md", "---\ntitle: A\n---\n\n# A\n")
	writeContent(t, dir, "b.md", "---\ntitle: B\n---\n\n# B\n")

	manualPath := filepath.Join(t.TempDir(), "manual_edges.json")
	manual := `[
		{"from": "a", "to": "b", "relationship": "Prereq", "weight": 0.95},
		{"from": "a", "to": "ghost", "relationship": "relates_to"}
	]`
	if err := os.WriteFile(manualPath, []byte(manual), 0o644); err != nil {
		t.Fatalf("write manual edges: %v", err)
	}

	g, stats, err := markdownBuilder(dir).WithManualEdges(manualPath).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if stats.ManualEdgesLoaded != 1 {
		t.Fatalf("expected 1 manual edge loaded, got %d", stats.ManualEdgesLoaded)
	}

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	e := edges[0]
	if e.Relationship != graph.RelPrerequisite || e.Weight != 0.95 || e.Origin != graph.OriginManual {
		t.Errorf("manual edge fields wrong: %+v", e)
	}

	found := false
	for _, ref := range stats.DanglingRefs {
		if strings.HasPrefix(ref, "manual: ") && strings.Contains(ref, "ghost") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected manual dangling ref for ghost, got %v", stats.DanglingRefs)
	}
}

func TestBuild_ManualEdgesFileMissing(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "a.md", "---\ntitle: A\n---\n\n# A\n")

	_, stats, err := markdownBuilder(dir).
		WithManualEdges(filepath.Join(dir, "does-not-exist.json")).
		Build(context.Background())
	if err != nil {
		t.Fatalf("missing manual edges file must not fail the build: %v", err)
	}
	if stats.ManualEdgesLoaded != 0 {
		t.Errorf("expected 0 manual edges, got %d", stats.ManualEdgesLoaded)
	}
}

func TestBuild_CacheHitAndSkip(t *testing.T) {
	dir := t.TempDir()
	writeContent(t, dir, "a.md", "---\ntitle: A\nrelated:\n  - b\n---\n\n# A\n")
	writeContent(t, dir, "b.md", "---\ntitle: B\n---\n\n# B\n")

	cache, err := store.NewStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()

	// First build populates the cache.
	_, stats, err := markdownBuilder(dir).WithCache(cache).Build(ctx)
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	if stats.FromCache {
		t.Fatal("first build cannot be a cache hit")
	}

	// Second build hits it: nothing re-parsed.
	g, stats, err := markdownBuilder(dir).WithCache(cache).Build(ctx)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if !stats.FromCache {
		t.Fatal("expected cache hit")
	}
	if stats.FilesProcessed != 0 {
		t.Errorf("cache hit must not process files, got %d", stats.FilesProcessed)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("cached graph wrong shape: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	// SkipCache forces a full rebuild.
	_, stats, err = markdownBuilder(dir).WithCache(cache).SkipCache().Build(ctx)
	if err != nil {
		t.Fatalf("skip-cache build failed: %v", err)
	}
	if stats.FromCache {
		t.Fatal("SkipCache build must not hit the cache")
	}
	if stats.FilesProcessed != 2 {
		t.Errorf("expected full reparse, got %d files", stats.FilesProcessed)
	}
}
