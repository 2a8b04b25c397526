// Package builder constructs a knowledge graph from a tree of markdown
// content files in two phases: all nodes first, then all edges, so forward
// references resolve regardless of file order.
package builder

import (
	"github.com/graphlord/graphlord/pkg/content"
	"github.com/graphlord/graphlord/pkg/graph"
)

// Extractor turns content files into graph nodes and edges. It is generic
// over the intermediate node and edge representations so domains can carry
// whatever they need between the two build phases.
//
// ExtractNode and ExtractEdges run in phase 1, once per file. GraphNode and
// GraphEdges materialize the intermediate data; edges are materialized in
// phase 2, after every node exists.
type Extractor[N, E any] interface {
	// ExtractNode parses one file into the intermediate node representation.
	ExtractNode(root string, file content.File, fm *content.Frontmatter, body string) (N, error)
	// ExtractEdges parses edge declarations from one file. The second return
	// reports whether any edge data was found.
	ExtractEdges(fm *content.Frontmatter, body string) (E, bool, error)
	// GraphNode converts intermediate node data to a graph node.
	GraphNode(data N) graph.Node
	// GraphEdges converts intermediate edge data to concrete edges rooted at
	// the node the data was extracted from.
	GraphEdges(fromID string, data E) []graph.Edge
}
