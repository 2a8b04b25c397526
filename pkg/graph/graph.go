package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a queried node ID, or an edge endpoint, does
// not exist in the graph. Callers check it with errors.Is.
var ErrNotFound = errors.New("not found")

// notFound wraps ErrNotFound with the kind and ID of the missing entity.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Graph is the in-memory directed knowledge graph.
//
// Nodes live in an arena slice; slots give stable O(1) access between
// mutations. The id→slot index and the in/out adjacency lists are rebuilt in
// full after a removal, since swap-removal relocates the last node's slot.
// The flat edge list is kept in sync with the adjacency by every mutating
// operation and serves serialization and iteration.
type Graph struct {
	nodes []Node         // arena: slot -> node
	index map[string]int // node ID -> slot
	edges []Edge         // flat edge list, insertion order
	out   [][]int        // slot -> indices into edges (outgoing)
	in    [][]int        // slot -> indices into edges (incoming)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// ContainsNode reports whether a node with the given ID exists.
func (g *Graph) ContainsNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// GetNode returns the node with the given ID.
func (g *Graph) GetNode(id string) (Node, bool) {
	slot, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[slot], true
}

// GetIndex returns the internal slot for a node ID. Slots are invalidated by
// RemoveNode; callers holding slots across removals must re-resolve them.
func (g *Graph) GetIndex(id string) (int, bool) {
	slot, ok := g.index[id]
	return slot, ok
}

// NodeIDs returns all node IDs in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns all nodes in arena order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// AddNode inserts a node and returns its slot. Insertion is idempotent: if a
// node with the same ID already exists, the existing slot is returned and the
// graph is unchanged.
func (g *Graph) AddNode(n Node) int {
	if slot, ok := g.index[n.ID]; ok {
		return slot
	}
	slot := len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[n.ID] = slot
	return slot
}

// AddEdge inserts an edge. Both endpoints must already exist; otherwise the
// edge is not added and an ErrNotFound-wrapping error is returned.
func (g *Graph) AddEdge(e Edge) error {
	from, ok := g.index[e.From]
	if !ok {
		return notFound("node", e.From)
	}
	to, ok := g.index[e.To]
	if !ok {
		return notFound("node", e.To)
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
	return nil
}

// RemoveNode deletes the node and every edge touching it in either
// direction, returning the removed node, or false if the ID is absent.
//
// Removal swap-fills the arena slot and then rebuilds the id→slot index and
// both adjacency lists from scratch. This is O(nodes + edges) by design;
// correctness of previously issued slots is not preserved.
func (g *Graph) RemoveNode(id string) (Node, bool) {
	slot, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	removed := g.nodes[slot]

	last := len(g.nodes) - 1
	g.nodes[slot] = g.nodes[last]
	g.nodes = g.nodes[:last]

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.From == id || e.To == id {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	g.rebuildIndices()
	return removed, true
}

// rebuildIndices reconstructs the id→slot map and adjacency lists from the
// node arena and flat edge list.
func (g *Graph) rebuildIndices() {
	g.index = make(map[string]int, len(g.nodes))
	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	for slot, n := range g.nodes {
		g.index[n.ID] = slot
	}
	for idx, e := range g.edges {
		from := g.index[e.From]
		to := g.index[e.To]
		g.out[from] = append(g.out[from], idx)
		g.in[to] = append(g.in[to], idx)
	}
}

// outEdges returns the indices of edges leaving the slot.
func (g *Graph) outEdges(slot int) []int { return g.out[slot] }

// inEdges returns the indices of edges entering the slot.
func (g *Graph) inEdges(slot int) []int { return g.in[slot] }

// edgeAt returns the edge at the given flat-list index.
func (g *Graph) edgeAt(idx int) Edge { return g.edges[idx] }

// nodeAt returns the node in the given slot.
func (g *Graph) nodeAt(slot int) Node { return g.nodes[slot] }

// Clone returns a deep copy of the graph. Used when handing a snapshot to
// callers that must not observe later mutations.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make([]Node, len(g.nodes)),
		edges: make([]Edge, len(g.edges)),
	}
	copy(c.nodes, g.nodes)
	copy(c.edges, g.edges)
	c.rebuildIndices()
	return c
}
