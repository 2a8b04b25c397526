// Package engine serves whole graph snapshots. A rebuild produces a complete
// new graph which is swapped in under a write lock; queries share read locks
// against the current snapshot and never observe a half-built graph.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/graphlord/graphlord/pkg/builder"
	"github.com/graphlord/graphlord/pkg/graph"
)

// ErrNoGraph is returned by queries before the first snapshot is installed.
var ErrNoGraph = errors.New("no graph installed")

// RebuildFunc produces a fresh snapshot. skipCache forces a full rebuild
// even when the cached snapshot is fresh.
type RebuildFunc func(ctx context.Context, skipCache bool) (*graph.Graph, *builder.BuildStats, error)

// Info summarizes the installed snapshot.
type Info struct {
	Stats     graph.Stats         `json:"stats"`
	BuiltAt   time.Time           `json:"built_at"`
	FromCache bool                `json:"from_cache"`
	LastBuild *builder.BuildStats `json:"last_build,omitempty"`
}

// Export is the full graph dump served to clients.
type Export struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// Registry holds the currently served graph snapshot.
type Registry struct {
	mu        sync.RWMutex
	current   *graph.Graph
	stats     graph.Stats
	lastBuild *builder.BuildStats
	builtAt   time.Time

	rebuildMu sync.Mutex
	rebuild   RebuildFunc

	logger *zap.Logger
}

// NewRegistry creates an empty registry. The logger may be nil.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// SetRebuilder wires the function used by Rebuild.
func (r *Registry) SetRebuilder(fn RebuildFunc) {
	r.rebuild = fn
}

// Install swaps in a new snapshot and updates the gauges.
func (r *Registry) Install(g *graph.Graph, buildStats *builder.BuildStats) {
	stats := graph.ComputeStats(g)

	r.mu.Lock()
	r.current = g
	r.stats = stats
	r.lastBuild = buildStats
	r.builtAt = time.Now().UTC()
	r.mu.Unlock()

	GraphlordGraphNodes.Set(float64(stats.NodeCount))
	GraphlordGraphEdges.Set(float64(stats.EdgeCount))

	r.logger.Info("snapshot_installed",
		zap.Int("nodes", stats.NodeCount),
		zap.Int("edges", stats.EdgeCount),
	)
}

// Rebuild runs the configured rebuild function and installs the result.
// Concurrent calls serialize; queries keep hitting the old snapshot until
// the swap.
func (r *Registry) Rebuild(ctx context.Context, skipCache bool) (*builder.BuildStats, error) {
	if r.rebuild == nil {
		return nil, errors.New("no rebuild function configured")
	}

	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	start := time.Now()
	g, stats, err := r.rebuild(ctx, skipCache)
	GraphlordBuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		GraphlordBuildTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if stats.FromCache {
		GraphlordBuildTotal.WithLabelValues("cache_hit").Inc()
	} else {
		GraphlordBuildTotal.WithLabelValues("success").Inc()
	}

	r.Install(g, stats)
	return stats, nil
}

// Ready reports whether a snapshot has been installed.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current != nil
}

// Info returns stats and build provenance for the installed snapshot.
func (r *Registry) Info() (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Info{}, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("info").Inc()
	info := Info{Stats: r.stats, BuiltAt: r.builtAt, LastBuild: r.lastBuild}
	if r.lastBuild != nil {
		info.FromCache = r.lastBuild.FromCache
	}
	return info, nil
}

// Export dumps every node and edge of the snapshot.
func (r *Registry) Export() (Export, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Export{}, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("export").Inc()
	return Export{Nodes: r.current.Nodes(), Edges: r.current.Edges()}, nil
}

// Validate lints the snapshot.
func (r *Registry) Validate() (graph.ValidationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return graph.ValidationReport{}, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("validate").Inc()
	return graph.ValidateGraph(r.current), nil
}

// Node looks up a single node by id.
func (r *Registry) Node(id string) (graph.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return graph.Node{}, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("node").Inc()
	n, ok := r.current.GetNode(id)
	if !ok {
		return graph.Node{}, graph.ErrNotFound
	}
	return n, nil
}

// Related returns direct neighbors by relationship and direction.
func (r *Registry) Related(id string, rels []graph.Relationship, dir graph.Direction) ([]graph.Related, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("related").Inc()
	return graph.GetRelated(r.current, id, rels, dir)
}

// Neighborhood runs the bounded BFS query.
func (r *Registry) Neighborhood(id string, radius int, filter []graph.Relationship) (*graph.NeighborhoodResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("neighborhood").Inc()
	return graph.Neighborhood(r.current, id, radius, filter)
}

// ShortestPath runs the weighted pathfinding query.
func (r *Registry) ShortestPath(from, to string) (*graph.PathResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("path").Inc()
	return graph.ShortestPath(r.current, from, to)
}

// Prerequisites runs the ordered prerequisite closure query.
func (r *Registry) Prerequisites(id string) (*graph.PrerequisitesResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("prerequisites").Inc()
	return graph.PrerequisitesSorted(r.current, id)
}

// Centrality returns normalized degree centrality, optionally truncated.
func (r *Registry) Centrality(limit int) ([]graph.CentralityScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("centrality").Inc()
	scores := graph.CalculateCentrality(r.current)
	if limit > 0 && limit < len(scores) {
		scores = scores[:limit]
	}
	return scores, nil
}

// Bridges returns the top bridging nodes.
func (r *Registry) Bridges(limit int) ([]graph.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, ErrNoGraph
	}
	GraphlordQueryTotal.WithLabelValues("bridges").Inc()
	return graph.FindBridges(r.current, limit), nil
}
