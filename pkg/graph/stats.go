package graph

import "fmt"

// Stats summarizes the shape of a graph.
type Stats struct {
	NodeCount     int            `json:"node_count"`
	EdgeCount     int            `json:"edge_count"`
	Relationships map[string]int `json:"relationships"`
	Categories    map[string]int `json:"categories"`
	IsolatedNodes int            `json:"isolated_nodes"`
}

// ComputeStats tallies node, edge, relationship and category counts plus the
// number of nodes with no edges in either direction.
func ComputeStats(g *Graph) Stats {
	stats := Stats{
		NodeCount:     g.NodeCount(),
		EdgeCount:     g.EdgeCount(),
		Relationships: map[string]int{},
		Categories:    map[string]int{},
	}

	for _, e := range g.edges {
		stats.Relationships[e.Relationship.Name()]++
	}
	for slot, n := range g.nodes {
		if n.Category != "" {
			stats.Categories[n.Category]++
		}
		if len(g.out[slot]) == 0 && len(g.in[slot]) == 0 {
			stats.IsolatedNodes++
		}
	}
	return stats
}

// ValidationReport is the outcome of ValidateGraph. Issues are advisory;
// a graph with issues is still served.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateGraph lints the graph for structural oddities: isolated nodes,
// self-loops, duplicate (from, to, relationship) triples, and variant nodes
// whose canonical node is missing.
func ValidateGraph(g *Graph) ValidationReport {
	var issues []string

	for slot, n := range g.nodes {
		if len(g.out[slot]) == 0 && len(g.in[slot]) == 0 {
			issues = append(issues, fmt.Sprintf("isolated node: %s", n.ID))
		}
		if !n.IsCanonical && n.CanonicalID != "" && !g.ContainsNode(n.CanonicalID) {
			issues = append(issues, fmt.Sprintf("variant %s references missing canonical node %s", n.ID, n.CanonicalID))
		}
	}

	seen := map[string]bool{}
	for _, e := range g.edges {
		if e.From == e.To {
			issues = append(issues, fmt.Sprintf("self-loop: %s -[%s]-> %s", e.From, e.Relationship.Name(), e.To))
		}
		key := e.From + "\x00" + e.To + "\x00" + e.Relationship.Name()
		if seen[key] {
			issues = append(issues, fmt.Sprintf("duplicate edge: %s -[%s]-> %s", e.From, e.Relationship.Name(), e.To))
		}
		seen[key] = true
	}

	return ValidationReport{Valid: len(issues) == 0, Issues: issues}
}
