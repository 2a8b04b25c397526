package builder

import (
	"fmt"
	"path"
	"strings"

	"github.com/graphlord/graphlord/pkg/content"
	"github.com/graphlord/graphlord/pkg/graph"
)

// Frontmatter keys consumed by MarkdownExtractor. Anything else lands in the
// node's metadata map.
var markdownKeys = map[string]bool{
	"id":               true,
	"title":            true,
	"category":         true,
	"source":           true,
	"variant_of":       true,
	"node_type":        true,
	"prerequisites":    true,
	"leads_to":         true,
	"related":          true,
	"extends":          true,
	"introduces":       true,
	"covers":           true,
	"contrasts_with":   true,
	"answers_question": true,
}

// MarkdownNode is the intermediate node representation of MarkdownExtractor.
type MarkdownNode struct {
	Node graph.Node
}

// MarkdownEdges carries the edge declarations of one file until phase 2.
//
// Prerequisites point INTO the declaring node (the listed id must be
// understood first); every other list points out of it.
type MarkdownEdges struct {
	Prerequisites   []string
	LeadsTo         []string
	Related         []string
	Extends         []string
	Introduces      []string
	Covers          []string
	ContrastsWith   []string
	AnswersQuestion []string
	VariantOf       string
	WikiLinks       []string
}

func (e MarkdownEdges) empty() bool {
	return len(e.Prerequisites) == 0 && len(e.LeadsTo) == 0 && len(e.Related) == 0 &&
		len(e.Extends) == 0 && len(e.Introduces) == 0 && len(e.Covers) == 0 &&
		len(e.ContrastsWith) == 0 && len(e.AnswersQuestion) == 0 &&
		e.VariantOf == "" && len(e.WikiLinks) == 0
}

// MarkdownExtractor is the default Extractor. Node identity comes from the
// frontmatter `id` key, falling back to the file stem. Relationship lists in
// the frontmatter become weighted edges, and `[[wiki-link]]` targets in the
// body become RelatesTo edges.
type MarkdownExtractor struct{}

var _ Extractor[MarkdownNode, MarkdownEdges] = MarkdownExtractor{}

// ExtractNode builds a node from one file's frontmatter.
func (MarkdownExtractor) ExtractNode(root string, file content.File, fm *content.Frontmatter, body string) (MarkdownNode, error) {
	if fm.HadDelimiters() && !fm.Present() {
		return MarkdownNode{}, fmt.Errorf("%s: malformed frontmatter", file.RelPath)
	}

	id, _ := fm.GetString("id")
	if id == "" {
		id = fileStem(file.RelPath)
	}
	title, _ := fm.GetString("title")
	if title == "" {
		title = id
	}

	node := graph.NewNode(id, title)
	node.Category, _ = fm.GetString("category")
	node.SourceID, _ = fm.GetString("source")
	if canonical, _ := fm.GetString("variant_of"); canonical != "" {
		node = node.AsVariantOf(canonical)
	}
	if nodeType, _ := fm.GetString("node_type"); nodeType == string(graph.NodeUserQuery) {
		node.NodeType = graph.NodeUserQuery
	}

	for key, value := range fm.Fields() {
		if markdownKeys[key] {
			continue
		}
		if node.Metadata == nil {
			node.Metadata = map[string]any{}
		}
		node.Metadata[key] = value
	}

	return MarkdownNode{Node: node}, nil
}

// ExtractEdges collects the relationship lists and body wiki-links.
func (MarkdownExtractor) ExtractEdges(fm *content.Frontmatter, body string) (MarkdownEdges, bool, error) {
	edges := MarkdownEdges{
		Prerequisites:   fm.GetStringList("prerequisites"),
		LeadsTo:         fm.GetStringList("leads_to"),
		Related:         fm.GetStringList("related"),
		Extends:         fm.GetStringList("extends"),
		Introduces:      fm.GetStringList("introduces"),
		Covers:          fm.GetStringList("covers"),
		ContrastsWith:   fm.GetStringList("contrasts_with"),
		AnswersQuestion: fm.GetStringList("answers_question"),
		WikiLinks:       content.WikiLinks(body),
	}
	edges.VariantOf, _ = fm.GetString("variant_of")
	return edges, !edges.empty(), nil
}

// GraphNode returns the node built in phase 1.
func (MarkdownExtractor) GraphNode(data MarkdownNode) graph.Node {
	return data.Node
}

// GraphEdges materializes the declarations into concrete edges.
func (MarkdownExtractor) GraphEdges(fromID string, data MarkdownEdges) []graph.Edge {
	var edges []graph.Edge

	for _, target := range data.Prerequisites {
		edges = append(edges, graph.NewEdge(target, fromID, graph.RelPrerequisite))
	}

	outgoing := []struct {
		targets []string
		rel     graph.Relationship
	}{
		{data.LeadsTo, graph.RelLeadsTo},
		{data.Related, graph.RelRelatesTo},
		{data.Extends, graph.RelExtends},
		{data.Introduces, graph.RelIntroduces},
		{data.Covers, graph.RelCovers},
		{data.ContrastsWith, graph.RelContrastsWith},
		{data.AnswersQuestion, graph.RelAnswersQuestion},
	}
	for _, group := range outgoing {
		for _, target := range group.targets {
			edges = append(edges, graph.NewEdge(fromID, target, group.rel))
		}
	}

	if data.VariantOf != "" {
		edges = append(edges, graph.NewEdge(fromID, data.VariantOf, graph.RelVariantOf))
	}

	for _, target := range data.WikiLinks {
		if target == fromID {
			continue
		}
		edges = append(edges, graph.NewEdge(fromID, target, graph.RelRelatesTo).WithOrigin(graph.OriginContentBody))
	}

	return edges
}

// fileStem returns the file name without directories or the .md suffix.
func fileStem(relPath string) string {
	return strings.TrimSuffix(path.Base(relPath), ".md")
}
