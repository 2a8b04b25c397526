package client

import (
	"time"

	"github.com/graphlord/graphlord/pkg/graph"
)

// Health represents the daemon health check response.
type Health struct {
	// Status is the health status string (e.g. "ok").
	Status string `json:"status"`
	// Ready reports whether the daemon serves a graph snapshot yet.
	Ready bool `json:"ready"`
}

// GraphStats summarizes the served snapshot.
type GraphStats struct {
	NodeCount     int            `json:"node_count"`
	EdgeCount     int            `json:"edge_count"`
	Relationships map[string]int `json:"relationships"`
	Categories    map[string]int `json:"categories"`
	IsolatedNodes int            `json:"isolated_nodes"`
}

// BuildStats reports what the last snapshot build did.
type BuildStats struct {
	NodesCreated      int      `json:"nodes_created"`
	EdgesCreated      int      `json:"edges_created"`
	FilesProcessed    int      `json:"files_processed"`
	FilesSkipped      int      `json:"files_skipped"`
	ManualEdgesLoaded int      `json:"manual_edges_loaded"`
	DanglingRefs      []string `json:"dangling_refs,omitempty"`
	DedupedEdges      int      `json:"deduped_edges"`
	FromCache         bool     `json:"from_cache"`
}

// GraphInfo describes the installed snapshot and its build provenance.
type GraphInfo struct {
	Stats     GraphStats  `json:"stats"`
	BuiltAt   time.Time   `json:"built_at"`
	FromCache bool        `json:"from_cache"`
	LastBuild *BuildStats `json:"last_build,omitempty"`
}

// GraphExport is the full node and edge dump.
type GraphExport struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// RelatedResult is the radius-1 neighborhood of a node.
type RelatedResult struct {
	Source  graph.Node   `json:"source"`
	Related []graph.Node `json:"related"`
	Count   int          `json:"count"`
}

// PrerequisitesResult is the ordered prerequisite closure of a node. When
// HasCycles is true the ordering is arbitrary.
type PrerequisitesResult struct {
	Target        graph.Node   `json:"target"`
	Prerequisites []graph.Node `json:"prerequisites"`
	Count         int          `json:"count"`
	HasCycles     bool         `json:"has_cycles"`
}

// RelatedOptions filters a related query. Zero values mean no filter.
type RelatedOptions struct {
	// Relationship restricts results to one relationship type.
	Relationship string
	// Limit truncates the result; 0 means everything the daemon returns.
	Limit int
}

type rebuildRequest struct {
	SkipCache bool `json:"skip_cache"`
}

type apiError struct {
	Error string `json:"error"`
}
