package builder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/graphlord/graphlord/pkg/graph"
)

// ManualEdge is one record of the hand-curated edges file, a JSON array of
// {from, to, relationship, weight?} objects. Relationship names are matched
// case-insensitively; a missing weight takes the relationship's default.
type ManualEdge struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Relationship string   `json:"relationship"`
	Weight       *float32 `json:"weight,omitempty"`
}

// loadManualEdges applies the manual edges file to a built graph, sharing
// the phase-2 dedup set. A missing file is fine and loads zero edges.
func loadManualEdges(path string, g *graph.Graph, seen map[string]bool, stats *BuildStats) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read manual edges %s: %w", path, err)
	}

	var manual []ManualEdge
	if err := json.Unmarshal(raw, &manual); err != nil {
		return 0, fmt.Errorf("parse manual edges %s: %w", path, err)
	}

	loaded := 0
	for _, m := range manual {
		if !g.ContainsNode(m.From) || !g.ContainsNode(m.To) {
			stats.DanglingRefs = append(stats.DanglingRefs,
				fmt.Sprintf("manual: %s -[%s]-> %s", m.From, m.Relationship, m.To))
			continue
		}

		rel := graph.ParseRelationship(m.Relationship)
		key := edgeKey(m.From, m.To, rel.Name())
		if seen[key] {
			stats.DedupedEdges++
			continue
		}
		seen[key] = true

		weight := rel.DefaultWeight()
		if m.Weight != nil {
			weight = *m.Weight
		}

		edge := graph.NewEdge(m.From, m.To, rel).WithWeight(weight).WithOrigin(graph.OriginManual)
		if err := g.AddEdge(edge); err == nil {
			loaded++
		}
	}

	return loaded, nil
}
