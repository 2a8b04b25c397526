package graph

import (
	"container/heap"
	"sort"
)

// MaxBFSDepth caps neighborhood traversal depth regardless of the requested
// radius, guaranteeing termination and bounded cost.
const MaxBFSDepth = 10

// Direction selects which edges to follow relative to a node.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// NeighborhoodResult is the outcome of a neighborhood query.
type NeighborhoodResult struct {
	Center    Node           `json:"center"`
	Nodes     []Node         `json:"nodes"`
	Edges     []Edge         `json:"edges"`
	Distances map[string]int `json:"distances"`
}

// PathResult is the outcome of a shortest-path query. Found=false is a
// normal result, not an error.
type PathResult struct {
	Path        []Node  `json:"path"`
	Edges       []Edge  `json:"edges"`
	TotalWeight float32 `json:"total_weight"`
	Found       bool    `json:"found"`
}

// PrerequisitesResult is the outcome of a prerequisites query. When
// HasCycles is true the ordering is arbitrary, not topological.
type PrerequisitesResult struct {
	Ordered   []Node `json:"ordered"`
	Target    Node   `json:"target"`
	HasCycles bool   `json:"has_cycles"`
}

// CentralityScore holds normalized degree centrality for one node.
type CentralityScore struct {
	NodeID    string  `json:"node_id"`
	Degree    float32 `json:"degree"`
	InDegree  float32 `json:"in_degree"`
	OutDegree float32 `json:"out_degree"`
}

// Related pairs a neighboring node with the relationship that connects it.
type Related struct {
	Node         Node         `json:"node"`
	Relationship Relationship `json:"relationship"`
}

// Neighborhood returns the nodes and edges within radius hops of the center,
// exploring both outgoing and incoming edges at each step. The radius is
// clamped to MaxBFSDepth. The optional filter restricts traversal to the
// given relationship types. Radius 0 yields an empty neighborhood.
func Neighborhood(g *Graph, centerID string, radius int, filter []Relationship) (*NeighborhoodResult, error) {
	center, ok := g.GetNode(centerID)
	if !ok {
		return nil, notFound("node", centerID)
	}
	centerSlot, _ := g.GetIndex(centerID)

	if radius > MaxBFSDepth {
		radius = MaxBFSDepth
	}

	result := &NeighborhoodResult{
		Center:    center,
		Distances: map[string]int{centerID: 0},
	}

	visited := map[int]bool{centerSlot: true}
	type item struct {
		slot int
		dist int
	}
	queue := []item{{centerSlot, 0}}

	visit := func(edge Edge, neighborSlot, dist int) bool {
		if len(filter) > 0 && !containsRel(filter, edge.Relationship) {
			return false
		}
		if visited[neighborSlot] {
			return false
		}
		visited[neighborSlot] = true
		neighbor := g.nodeAt(neighborSlot)
		result.Distances[neighbor.ID] = dist
		result.Nodes = append(result.Nodes, neighbor)
		result.Edges = append(result.Edges, edge)
		return true
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.dist >= radius {
			continue
		}

		for _, idx := range g.outEdges(cur.slot) {
			edge := g.edgeAt(idx)
			to, _ := g.GetIndex(edge.To)
			if visit(edge, to, cur.dist+1) {
				queue = append(queue, item{to, cur.dist + 1})
			}
		}
		for _, idx := range g.inEdges(cur.slot) {
			edge := g.edgeAt(idx)
			from, _ := g.GetIndex(edge.From)
			if visit(edge, from, cur.dist+1) {
				queue = append(queue, item{from, cur.dist + 1})
			}
		}
	}

	return result, nil
}

// pathItem is a priority-queue entry for ShortestPath.
type pathItem struct {
	slot string
	cost float64
}

type pathQueue []pathItem

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any)         { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() any           { old := *q; n := len(old); it := old[n-1]; *q = old[:n-1]; return it }

// ShortestPath finds the cheapest directed path between two nodes. Each
// edge costs 1/max(weight, 0.01), so higher-weight relationships are cheaper
// to traverse; the heuristic is zero, degrading A* to uniform-cost search.
// Missing endpoints and unreachable targets both return Found=false.
func ShortestPath(g *Graph, fromID, toID string) (*PathResult, error) {
	if !g.ContainsNode(fromID) || !g.ContainsNode(toID) {
		return &PathResult{}, nil
	}

	if fromID == toID {
		node, _ := g.GetNode(fromID)
		return &PathResult{Path: []Node{node}, TotalWeight: 0, Found: true}, nil
	}

	dist := map[string]float64{fromID: 0}
	prevEdge := map[string]Edge{}
	done := map[string]bool{}

	q := &pathQueue{{fromID, 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(pathItem)
		if done[cur.slot] {
			continue
		}
		done[cur.slot] = true
		if cur.slot == toID {
			break
		}

		slot, _ := g.GetIndex(cur.slot)
		for _, idx := range g.outEdges(slot) {
			edge := g.edgeAt(idx)
			w := float64(edge.Weight)
			if w < 0.01 {
				w = 0.01
			}
			next := cur.cost + 1/w
			if d, ok := dist[edge.To]; !ok || next < d {
				dist[edge.To] = next
				prevEdge[edge.To] = edge
				heap.Push(q, pathItem{edge.To, next})
			}
		}
	}

	if !done[toID] {
		return &PathResult{}, nil
	}

	// Walk predecessors back to the start.
	var edges []Edge
	for id := toID; id != fromID; {
		edge := prevEdge[id]
		edges = append([]Edge{edge}, edges...)
		id = edge.From
	}

	result := &PathResult{Found: true}
	start, _ := g.GetNode(fromID)
	result.Path = append(result.Path, start)
	for _, edge := range edges {
		node, _ := g.GetNode(edge.To)
		result.Path = append(result.Path, node)
		result.Edges = append(result.Edges, edge)
		result.TotalWeight += edge.Weight
	}
	return result, nil
}

// PrerequisitesSorted collects the transitive closure of incoming
// Prerequisite edges for the target, ordered learn-first to learn-last.
//
// Ordering comes from a topological sort of the entire graph filtered down to
// the collected set. If the whole graph contains a cycle anywhere, the sort
// fails and the same set is returned in arbitrary order with HasCycles=true.
func PrerequisitesSorted(g *Graph, targetID string) (*PrerequisitesResult, error) {
	target, ok := g.GetNode(targetID)
	if !ok {
		return nil, notFound("node", targetID)
	}
	targetSlot, _ := g.GetIndex(targetID)

	prereqs := map[int]bool{}
	queue := []int{targetSlot}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, idx := range g.inEdges(cur) {
			edge := g.edgeAt(idx)
			if edge.Relationship != RelPrerequisite {
				continue
			}
			src, _ := g.GetIndex(edge.From)
			if !prereqs[src] {
				prereqs[src] = true
				queue = append(queue, src)
			}
		}
	}

	result := &PrerequisitesResult{Target: target}
	if len(prereqs) == 0 {
		return result, nil
	}

	order, ok := topoSort(g)
	if !ok {
		result.HasCycles = true
		for slot := range prereqs {
			result.Ordered = append(result.Ordered, g.nodeAt(slot))
		}
		return result, nil
	}

	for _, slot := range order {
		if prereqs[slot] {
			result.Ordered = append(result.Ordered, g.nodeAt(slot))
		}
	}
	return result, nil
}

// topoSort runs Kahn's algorithm over the whole graph. It returns the slot
// order and false if any cycle exists.
func topoSort(g *Graph) ([]int, bool) {
	n := g.NodeCount()
	indegree := make([]int, n)
	for slot := 0; slot < n; slot++ {
		indegree[slot] = len(g.inEdges(slot))
	}

	var queue []int
	for slot := 0; slot < n; slot++ {
		if indegree[slot] == 0 {
			queue = append(queue, slot)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, idx := range g.outEdges(cur) {
			to, _ := g.GetIndex(g.edgeAt(idx).To)
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	return order, len(order) == n
}

// CalculateCentrality computes normalized degree centrality for every node,
// sorted by combined degree descending. Graphs with fewer than two nodes
// yield an empty list.
func CalculateCentrality(g *Graph) []CentralityScore {
	n := g.NodeCount()
	if n < 2 {
		return nil
	}

	norm := float32(n - 1)
	scores := make([]CentralityScore, 0, n)
	for slot := 0; slot < n; slot++ {
		in := float32(len(g.inEdges(slot)))
		out := float32(len(g.outEdges(slot)))
		scores = append(scores, CentralityScore{
			NodeID:    g.nodeAt(slot).ID,
			Degree:    (in + out) / (2 * norm),
			InDegree:  in / norm,
			OutDegree: out / norm,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Degree > scores[j].Degree
	})
	return scores
}

// FindBridges returns up to limit nodes that connect otherwise-distant parts
// of the graph, scored by connectivity times neighbor-category diversity:
// (min(in, out) + 1) * (distinct neighbor categories + 1).
func FindBridges(g *Graph, limit int) []Node {
	type scored struct {
		slot  int
		score float32
	}

	scores := make([]scored, 0, g.NodeCount())
	for slot := 0; slot < g.NodeCount(); slot++ {
		in := float32(len(g.inEdges(slot)))
		out := float32(len(g.outEdges(slot)))

		categories := map[string]bool{}
		for _, idx := range g.outEdges(slot) {
			neighbor, _ := g.GetNode(g.edgeAt(idx).To)
			if neighbor.Category != "" {
				categories[neighbor.Category] = true
			}
		}

		minDeg := in
		if out < in {
			minDeg = out
		}
		scores = append(scores, scored{slot, (minDeg + 1) * (float32(len(categories)) + 1)})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if limit > len(scores) {
		limit = len(scores)
	}
	bridges := make([]Node, 0, limit)
	for _, s := range scores[:limit] {
		bridges = append(bridges, g.nodeAt(s.slot))
	}
	return bridges
}

// GetRelated returns direct neighbors of a node connected by one of the
// given relationship types, following edges in the given direction.
func GetRelated(g *Graph, nodeID string, relationships []Relationship, dir Direction) ([]Related, error) {
	slot, ok := g.GetIndex(nodeID)
	if !ok {
		return nil, notFound("node", nodeID)
	}

	var idxs []int
	if dir == Outgoing {
		idxs = g.outEdges(slot)
	} else {
		idxs = g.inEdges(slot)
	}

	var results []Related
	for _, idx := range idxs {
		edge := g.edgeAt(idx)
		if !containsRel(relationships, edge.Relationship) {
			continue
		}
		neighborID := edge.To
		if dir == Incoming {
			neighborID = edge.From
		}
		neighbor, _ := g.GetNode(neighborID)
		results = append(results, Related{Node: neighbor, Relationship: edge.Relationship})
	}
	return results, nil
}

// Prerequisites returns the targets of the node's outgoing Prerequisite
// edges.
func (g *Graph) Prerequisites(nodeID string) ([]Node, error) {
	return relatedNodes(g, nodeID, []Relationship{RelPrerequisite}, Outgoing)
}

// Dependents returns the sources of the node's incoming Prerequisite edges.
func (g *Graph) Dependents(nodeID string) ([]Node, error) {
	return relatedNodes(g, nodeID, []Relationship{RelPrerequisite}, Incoming)
}

// RelatedBy returns nodes related by one relationship type, outgoing.
func (g *Graph) RelatedBy(nodeID string, rel Relationship) ([]Node, error) {
	return relatedNodes(g, nodeID, []Relationship{rel}, Outgoing)
}

func relatedNodes(g *Graph, nodeID string, rels []Relationship, dir Direction) ([]Node, error) {
	results, err := GetRelated(g, nodeID, rels, dir)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(results))
	for _, r := range results {
		nodes = append(nodes, r.Node)
	}
	return nodes, nil
}

func containsRel(rels []Relationship, r Relationship) bool {
	for _, candidate := range rels {
		if candidate == r {
			return true
		}
	}
	return false
}
