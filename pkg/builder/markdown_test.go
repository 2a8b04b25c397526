package builder

import (
	"testing"

	"github.com/graphlord/graphlord/pkg/content"
	"github.com/graphlord/graphlord/pkg/graph"
)

func extractNode(t *testing.T, raw string) graph.Node {
	t.Helper()
	fm, body := content.Extract(raw)
	data, err := MarkdownExtractor{}.ExtractNode("/content", content.File{RelPath: "topics/linear-algebra.md"}, fm, body)
	if err != nil {
		t.Fatalf("ExtractNode failed: %v", err)
	}
	return MarkdownExtractor{}.GraphNode(data)
}

func TestMarkdownExtractor_NodeFields(t *testing.T) {
	node := extractNode(t, "---\nid: linalg\ntitle: Linear Algebra\ncategory: math\nsource: strang\ndifficulty: intro\n---\n\nBody\n")
	if node.ID != "linalg" || node.Title != "Linear Algebra" {
		t.Fatalf("identity wrong: %+v", node)
	}
	if node.Category != "math" || node.SourceID != "strang" {
		t.Errorf("fields wrong: %+v", node)
	}
	if !node.IsCanonical || node.NodeType != graph.NodeDomain {
		t.Errorf("defaults wrong: %+v", node)
	}
	if node.Metadata["difficulty"] != "intro" {
		t.Errorf("extra keys should land in metadata: %+v", node.Metadata)
	}
	if _, ok := node.Metadata["title"]; ok {
		t.Error("known keys must not leak into metadata")
	}
}

func TestMarkdownExtractor_IDFallsBackToFileStem(t *testing.T) {
	node := extractNode(t, "---\ntitle: Untagged\n---\n\nBody\n")
	if node.ID != "linear-algebra" {
		t.Fatalf("expected file stem id, got %q", node.ID)
	}

	node = extractNode(t, "no frontmatter at all")
	if node.ID != "linear-algebra" || node.Title != "linear-algebra" {
		t.Fatalf("bare file should use stem for id and title: %+v", node)
	}
}

func TestMarkdownExtractor_Variant(t *testing.T) {
	node := extractNode(t, "---\nid: calc-spivak\ntitle: Calculus (Spivak)\nvariant_of: calculus\n---\n\nBody\n")
	if node.IsCanonical || node.CanonicalID != "calculus" {
		t.Fatalf("variant not applied: %+v", node)
	}

	fm, body := content.Extract("---\nid: calc-spivak\nvariant_of: calculus\n---\n\nBody\n")
	edges, has, err := MarkdownExtractor{}.ExtractEdges(fm, body)
	if err != nil || !has {
		t.Fatalf("ExtractEdges: has=%v err=%v", has, err)
	}
	materialized := MarkdownExtractor{}.GraphEdges("calc-spivak", edges)
	if len(materialized) != 1 || materialized[0].Relationship != graph.RelVariantOf || materialized[0].To != "calculus" {
		t.Fatalf("expected variant_of edge to canonical, got %+v", materialized)
	}
}

func TestMarkdownExtractor_UserQueryNodeType(t *testing.T) {
	node := extractNode(t, "---\nid: q1\nnode_type: user_query\n---\n\nBody\n")
	if node.NodeType != graph.NodeUserQuery {
		t.Fatalf("node_type not honored: %+v", node)
	}
}

func TestMarkdownExtractor_EdgeDirections(t *testing.T) {
	fm, body := content.Extract("---\nid: calculus\nprerequisites:\n  - algebra\nleads_to:\n  - analysis\n---\n\nBody mentions [[topology]].\n")
	data, has, err := MarkdownExtractor{}.ExtractEdges(fm, body)
	if err != nil || !has {
		t.Fatalf("ExtractEdges: has=%v err=%v", has, err)
	}
	edges := MarkdownExtractor{}.GraphEdges("calculus", data)

	byRel := map[graph.Relationship]graph.Edge{}
	for _, e := range edges {
		byRel[e.Relationship] = e
	}

	// Prerequisites point into the declaring node.
	prereq := byRel[graph.RelPrerequisite]
	if prereq.From != "algebra" || prereq.To != "calculus" {
		t.Errorf("prerequisite direction wrong: %+v", prereq)
	}

	leads := byRel[graph.RelLeadsTo]
	if leads.From != "calculus" || leads.To != "analysis" {
		t.Errorf("leads_to direction wrong: %+v", leads)
	}

	wiki := byRel[graph.RelRelatesTo]
	if wiki.From != "calculus" || wiki.To != "topology" {
		t.Errorf("wiki-link edge wrong: %+v", wiki)
	}
	if wiki.Origin != graph.OriginContentBody {
		t.Errorf("wiki-link edges carry content_body origin, got %s", wiki.Origin)
	}
}

func TestMarkdownExtractor_SelfWikiLinkSkipped(t *testing.T) {
	fm, body := content.Extract("---\nid: calculus\n---\n\nSelf link [[calculus]] here.\n")
	data, has, err := MarkdownExtractor{}.ExtractEdges(fm, body)
	if err != nil {
		t.Fatalf("ExtractEdges failed: %v", err)
	}
	if has {
		if edges := (MarkdownExtractor{}).GraphEdges("calculus", data); len(edges) != 0 {
			t.Fatalf("self wiki-link must not produce an edge: %+v", edges)
		}
	}
}
