package api

import (
	"github.com/graphlord/graphlord/pkg/graph"
)

// API Request/Response Structs

// HealthResponse reports daemon liveness and whether a snapshot is served.
type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// RelatedResponse is the radius-1 neighborhood of a node.
type RelatedResponse struct {
	Source  graph.Node   `json:"source"`
	Related []graph.Node `json:"related"`
	Count   int          `json:"count"`
}

// PrerequisitesResponse is the ordered prerequisite closure of a node.
type PrerequisitesResponse struct {
	Target        graph.Node   `json:"target"`
	Prerequisites []graph.Node `json:"prerequisites"`
	Count         int          `json:"count"`
	HasCycles     bool         `json:"has_cycles"`
}

// RebuildRequest controls a snapshot rebuild.
type RebuildRequest struct {
	SkipCache bool `json:"skip_cache"`
}
