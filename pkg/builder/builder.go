package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/graphlord/graphlord/pkg/content"
	"github.com/graphlord/graphlord/pkg/graph"
	"github.com/graphlord/graphlord/pkg/store"
)

// ErrNoContentPath is returned by Build when no content path was configured.
var ErrNoContentPath = errors.New("content path not set")

// ErrorMode controls how file-level failures are handled during a build.
type ErrorMode int

const (
	// FailFast stops on the first error.
	FailFast ErrorMode = iota
	// Collect continues and records errors in the stats.
	Collect
	// Skip continues, recording errors and logging each skipped file.
	Skip
)

// BuildError records one file that failed during a build.
type BuildError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// BuildStats summarizes a build. Dangling references, deduplicated edges and
// cycles are statistics, not errors.
type BuildStats struct {
	NodesCreated      int          `json:"nodes_created"`
	EdgesCreated      int          `json:"edges_created"`
	FilesProcessed    int          `json:"files_processed"`
	FilesSkipped      int          `json:"files_skipped"`
	Errors            []BuildError `json:"errors,omitempty"`
	ManualEdgesLoaded int          `json:"manual_edges_loaded"`
	DanglingRefs      []string     `json:"dangling_refs,omitempty"`
	DedupedEdges      int          `json:"deduped_edges"`
	FromCache         bool         `json:"from_cache"`
}

// Builder assembles a graph from a content tree using an Extractor.
//
// With a cache configured, Build first compares the content fingerprint
// against the cached snapshot and loads it on a hit instead of re-parsing
// every file.
type Builder[N, E any] struct {
	extractor       Extractor[N, E]
	contentPath     string
	manualEdgesPath string
	errorMode       ErrorMode
	cache           store.GraphCache
	skipCache       bool
	logger          *zap.Logger
}

// New creates a builder around the given extractor.
func New[N, E any](extractor Extractor[N, E]) *Builder[N, E] {
	return &Builder[N, E]{
		extractor: extractor,
		logger:    zap.NewNop(),
	}
}

// WithContentPath sets the content root directory.
func (b *Builder[N, E]) WithContentPath(path string) *Builder[N, E] {
	b.contentPath = path
	return b
}

// WithManualEdges sets the JSON file of hand-curated edges loaded in phase 3.
func (b *Builder[N, E]) WithManualEdges(path string) *Builder[N, E] {
	b.manualEdgesPath = path
	return b
}

// WithErrorMode sets the error handling strategy.
func (b *Builder[N, E]) WithErrorMode(mode ErrorMode) *Builder[N, E] {
	b.errorMode = mode
	return b
}

// WithCache sets the snapshot cache backend.
func (b *Builder[N, E]) WithCache(cache store.GraphCache) *Builder[N, E] {
	b.cache = cache
	return b
}

// SkipCache forces a full rebuild even when the cache is fresh.
func (b *Builder[N, E]) SkipCache() *Builder[N, E] {
	b.skipCache = true
	return b
}

// WithLogger sets the logger. Defaults to a no-op logger.
func (b *Builder[N, E]) WithLogger(logger *zap.Logger) *Builder[N, E] {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build runs the two-phase build: every node is added before any edge, so
// files can reference nodes defined later in the walk order.
func (b *Builder[N, E]) Build(ctx context.Context) (*graph.Graph, *BuildStats, error) {
	if b.contentPath == "" {
		return nil, nil, ErrNoContentPath
	}

	if b.cache != nil && !b.skipCache {
		if g, stats := b.tryCache(ctx); g != nil {
			return g, stats, nil
		}
	}

	files, err := content.Discover(b.contentPath)
	if err != nil {
		return nil, nil, err
	}

	g := graph.New()
	stats := &BuildStats{}

	// Phase 1: nodes. Edge data is queued for phase 2.
	type pending struct {
		fromID string
		data   E
	}
	var pendingEdges []pending

	for _, file := range files {
		node, edgeData, hasEdges, err := b.processFile(file)
		if err != nil {
			if b.errorMode == FailFast {
				return nil, nil, err
			}
			stats.FilesSkipped++
			stats.Errors = append(stats.Errors, BuildError{File: file.RelPath, Message: err.Error()})
			if b.errorMode == Skip {
				b.logger.Warn("file_skipped", zap.String("file", file.RelPath), zap.Error(err))
			}
			stats.FilesProcessed++
			continue
		}

		g.AddNode(node)
		stats.NodesCreated++
		stats.FilesProcessed++
		if hasEdges {
			pendingEdges = append(pendingEdges, pending{fromID: node.ID, data: edgeData})
		}
	}

	// Phase 2: edges, with dangling tracking and (from, to, relationship)
	// dedup. Mirror declarations are distinct keys and both survive.
	seen := map[string]bool{}
	for _, p := range pendingEdges {
		for _, edge := range b.extractor.GraphEdges(p.fromID, p.data) {
			if !g.ContainsNode(edge.From) || !g.ContainsNode(edge.To) {
				stats.DanglingRefs = append(stats.DanglingRefs,
					fmt.Sprintf("%s -[%s]-> %s", edge.From, edge.Relationship.Name(), edge.To))
				continue
			}
			key := edgeKey(edge.From, edge.To, edge.Relationship.Name())
			if seen[key] {
				stats.DedupedEdges++
				continue
			}
			seen[key] = true
			if err := g.AddEdge(edge); err == nil {
				stats.EdgesCreated++
			}
		}
	}

	// Phase 3: manual edges.
	if b.manualEdgesPath != "" {
		loaded, err := loadManualEdges(b.manualEdgesPath, g, seen, stats)
		if err != nil {
			return nil, nil, err
		}
		stats.ManualEdgesLoaded = loaded
	}

	b.logger.Info("graph_built",
		zap.Int("nodes", stats.NodesCreated),
		zap.Int("edges", stats.EdgesCreated),
		zap.Int("files", stats.FilesProcessed),
		zap.Int("dangling_refs", len(stats.DanglingRefs)),
		zap.Int("deduped", stats.DedupedEdges),
	)

	if b.cache != nil {
		b.saveCache(ctx, g, stats)
	}

	return g, stats, nil
}

// tryCache returns the cached graph on a fresh hit, or nil to fall through
// to a full build. Cache failures are logged, never fatal.
func (b *Builder[N, E]) tryCache(ctx context.Context) (*graph.Graph, *BuildStats) {
	fingerprint, err := content.Fingerprint(b.contentPath)
	if err != nil {
		b.logger.Warn("cache_fingerprint_failed", zap.Error(err))
		return nil, nil
	}
	fresh, err := b.cache.IsFresh(ctx, fingerprint)
	if err != nil {
		b.logger.Warn("cache_check_failed", zap.Error(err))
		return nil, nil
	}
	if !fresh {
		return nil, nil
	}
	g, _, err := b.cache.Load(ctx)
	if err != nil {
		b.logger.Warn("cache_load_failed", zap.Error(err))
		return nil, nil
	}
	b.logger.Info("cache_hit",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return g, &BuildStats{
		NodesCreated: g.NodeCount(),
		EdgesCreated: g.EdgeCount(),
		FromCache:    true,
	}
}

func (b *Builder[N, E]) saveCache(ctx context.Context, g *graph.Graph, stats *BuildStats) {
	fingerprint, err := content.Fingerprint(b.contentPath)
	if err != nil {
		b.logger.Warn("cache_fingerprint_failed", zap.Error(err))
		return
	}
	meta := store.Metadata{
		Fingerprint:     fingerprint,
		SourceFileCount: stats.FilesProcessed,
		BuiltAt:         time.Now().UTC(),
	}
	if err := b.cache.Save(ctx, g, meta); err != nil {
		b.logger.Warn("cache_save_failed", zap.Error(err))
	}
}

// processFile reads and parses one content file.
func (b *Builder[N, E]) processFile(file content.File) (graph.Node, E, bool, error) {
	var zero E
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return graph.Node{}, zero, false, fmt.Errorf("read %s: %w", file.RelPath, err)
	}

	fm, body := content.Extract(string(raw))

	nodeData, err := b.extractor.ExtractNode(b.contentPath, file, fm, body)
	if err != nil {
		return graph.Node{}, zero, false, err
	}
	edgeData, hasEdges, err := b.extractor.ExtractEdges(fm, body)
	if err != nil {
		return graph.Node{}, zero, false, err
	}

	return b.extractor.GraphNode(nodeData), edgeData, hasEdges, nil
}

func edgeKey(from, to, rel string) string {
	return from + "\x00" + to + "\x00" + rel
}
