package graph

import "strings"

// Relationship is the semantic label on an edge. The common relationships
// are first-class constants; anything else is carried as a custom value
// produced by ParseRelationship.
type Relationship string

const (
	RelPrerequisite    Relationship = "prerequisite"     // A must be understood before B
	RelLeadsTo         Relationship = "leads_to"         // understanding A naturally leads to B
	RelRelatesTo       Relationship = "relates_to"       // A and B are conceptually related (default)
	RelExtends         Relationship = "extends"          // A extends or generalises B
	RelIntroduces      Relationship = "introduces"       // source A introduces concept B
	RelCovers          Relationship = "covers"           // source A covers concept B
	RelVariantOf       Relationship = "variant_of"       // A is a source-specific variant of B
	RelContrastsWith   Relationship = "contrasts_with"   // A contrasts with or is an alternative to B
	RelAnswersQuestion Relationship = "answers_question" // A answers question B
)

// DefaultWeight returns the weight used when no explicit weight is supplied.
// Weights influence pathfinding cost.
func (r Relationship) DefaultWeight() float32 {
	switch r {
	case RelPrerequisite, RelLeadsTo:
		return 1.0
	case RelExtends, RelVariantOf:
		return 0.9
	case RelIntroduces, RelCovers:
		return 0.8
	case RelRelatesTo, RelContrastsWith:
		return 0.7
	case RelAnswersQuestion:
		return 0.6
	default:
		return 0.5
	}
}

// Name returns the relationship name as a string.
func (r Relationship) Name() string {
	return string(r)
}

// ParseRelationship maps a free-text relationship name to a Relationship.
// Matching is case-insensitive and accepts the common aliases; anything
// unrecognized becomes a custom relationship carrying the lowercased name.
func ParseRelationship(s string) Relationship {
	switch strings.ToLower(s) {
	case "prerequisite", "prereq":
		return RelPrerequisite
	case "leads_to", "leadsto":
		return RelLeadsTo
	case "relates_to", "relatesto", "related":
		return RelRelatesTo
	case "extends":
		return RelExtends
	case "introduces":
		return RelIntroduces
	case "covers":
		return RelCovers
	case "variant_of", "variantof":
		return RelVariantOf
	case "contrasts_with", "contrastswith":
		return RelContrastsWith
	case "answers_question", "answersquestion", "answers_questions":
		return RelAnswersQuestion
	default:
		return Relationship(strings.ToLower(s))
	}
}

// EdgeOrigin records where an edge came from, for debugging and validation.
type EdgeOrigin string

const (
	OriginFrontmatter EdgeOrigin = "frontmatter"  // extracted from content frontmatter
	OriginContentBody EdgeOrigin = "content_body" // extracted from the content body
	OriginManual      EdgeOrigin = "manual"       // loaded from the manual edges file
	OriginInferred    EdgeOrigin = "inferred"     // inferred by an algorithm
)

// NodeType distinguishes domain knowledge nodes from user-model nodes.
type NodeType string

const (
	NodeDomain    NodeType = "domain"
	NodeUserQuery NodeType = "user_query"
)

// Node represents a content item (concept, theorem, chapter) in the graph.
// Metadata stores domain-specific attributes as key-value pairs.
type Node struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Category    string         `json:"category,omitempty"`
	SourceID    string         `json:"source_id,omitempty"`
	IsCanonical bool           `json:"is_canonical"`
	CanonicalID string         `json:"canonical_id,omitempty"`
	NodeType    NodeType       `json:"node_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewNode creates a canonical domain node with the given ID and title.
func NewNode(id, title string) Node {
	return Node{
		ID:          id,
		Title:       title,
		IsCanonical: true,
		NodeType:    NodeDomain,
	}
}

// AsVariantOf marks the node as a source-specific variant of a canonical node.
func (n Node) AsVariantOf(canonicalID string) Node {
	n.IsCanonical = false
	n.CanonicalID = canonicalID
	return n
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From         string       `json:"from"`
	To           string       `json:"to"`
	Relationship Relationship `json:"relationship"`
	Weight       float32      `json:"weight"`
	Origin       EdgeOrigin   `json:"origin"`
}

// NewEdge creates an edge with the relationship's default weight and
// frontmatter origin.
func NewEdge(from, to string, rel Relationship) Edge {
	return Edge{
		From:         from,
		To:           to,
		Relationship: rel,
		Weight:       rel.DefaultWeight(),
		Origin:       OriginFrontmatter,
	}
}

// WithWeight sets an explicit weight.
func (e Edge) WithWeight(w float32) Edge {
	e.Weight = w
	return e
}

// WithOrigin sets the edge origin.
func (e Edge) WithOrigin(o EdgeOrigin) Edge {
	e.Origin = o
	return e
}
