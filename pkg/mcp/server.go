// Package mcp adapts the graphlord daemon to the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/graphlord/graphlord/pkg/client"
)

// Server exposes graph queries as MCP tools over stdio.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance talking to the daemon at apiURL.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"graphlord",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// graphlord://stats
	s.mcpServer.AddResource(mcp.NewResource(
		"graphlord://stats",
		"Graph Statistics",
		mcp.WithResourceDescription("Node, edge, relationship and category counts for the served graph"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadStats)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"graph_related",
		mcp.WithDescription("Find concepts directly connected to a node, optionally filtered by relationship type."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The node id to look up")),
		mcp.WithString("relationship", mcp.Description("Restrict to one relationship type (e.g. 'prerequisite', 'leads_to')")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.handleRelated)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_path",
		mcp.WithDescription("Find the learning path between two concepts. Stronger relationships are preferred."),
		mcp.WithString("from", mcp.Required(), mcp.Description("The starting node id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("The destination node id")),
	), s.handlePath)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_prerequisites",
		mcp.WithDescription("List everything that must be learned before a concept, ordered learn-first to learn-last."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The target node id")),
	), s.handlePrerequisites)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_neighborhood",
		mcp.WithDescription("Explore nodes and edges within a hop radius of a concept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The center node id")),
		mcp.WithNumber("radius", mcp.Description("Hop radius (default 1, capped at 10)")),
		mcp.WithString("relationship", mcp.Description("Restrict traversal to one relationship type")),
	), s.handleNeighborhood)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_info",
		mcp.WithDescription("Summarize the graph: node/edge counts, relationship and category breakdowns."),
	), s.handleInfo)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_validate",
		mcp.WithDescription("Lint the graph for isolated nodes, self-loops, duplicate edges and broken variants."),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_centrality",
		mcp.WithDescription("Rank concepts by normalized degree centrality."),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.handleCentrality)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_bridges",
		mcp.WithDescription("Find concepts that connect otherwise-distant areas of the graph."),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 10)")),
	), s.handleBridges)

	s.mcpServer.AddTool(mcp.NewTool(
		"graph_rebuild",
		mcp.WithDescription("Rebuild the graph from the content tree. Set skip_cache to force a full re-parse."),
		mcp.WithBoolean("skip_cache", mcp.Description("Bypass the snapshot cache (default false)")),
	), s.handleRebuild)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"graphlord-aware",
		mcp.WithPromptDescription("Provides context about graphlord concepts (Nodes, Relationships, Paths)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

// toolResultJSON renders a query result as indented JSON tool output.
func toolResultJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError maps daemon failures to tool errors the agent can act on.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, client.ErrNodeNotFound):
		return mcp.NewToolResultError("node not found; check the id against graph_related or graph_info")
	case errors.Is(err, client.ErrNotReady):
		return mcp.NewToolResultError("the graph daemon has no snapshot yet; try graph_rebuild")
	default:
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err))
	}
}

func (s *Server) handleReadStats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	info, err := s.apiClient.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch graph info: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleRelated(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	result, err := s.apiClient.Related(ctx, id, client.RelatedOptions{
		Relationship: mcp.ParseString(request, "relationship", ""),
		Limit:        int(mcp.ParseFloat64(request, "limit", 10)),
	})
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handlePath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := mcp.ParseString(request, "from", "")
	to := mcp.ParseString(request, "to", "")
	if from == "" || to == "" {
		return mcp.NewToolResultError("from and to are required"), nil
	}

	result, err := s.apiClient.Path(ctx, from, to)
	if err != nil {
		return toolError(err), nil
	}
	if !result.Found {
		return mcp.NewToolResultText(fmt.Sprintf("No path exists from %q to %q.", from, to)), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handlePrerequisites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	result, err := s.apiClient.Prerequisites(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handleNeighborhood(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	result, err := s.apiClient.Neighborhood(ctx, id,
		int(mcp.ParseFloat64(request, "radius", 1)),
		mcp.ParseString(request, "relationship", ""),
	)
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(result)
}

func (s *Server) handleInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.apiClient.Info(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(info)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.apiClient.Validate(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(report)
}

func (s *Server) handleCentrality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scores, err := s.apiClient.Centrality(ctx, int(mcp.ParseFloat64(request, "limit", 10)))
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(scores)
}

func (s *Server) handleBridges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bridges, err := s.apiClient.Bridges(ctx, int(mcp.ParseFloat64(request, "limit", 10)))
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(bridges)
}

func (s *Server) handleRebuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.apiClient.Rebuild(ctx, mcp.ParseBoolean(request, "skip_cache", false))
	if err != nil {
		return toolError(err), nil
	}
	return toolResultJSON(stats)
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "graphlord-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with graphlord, an in-memory knowledge graph built from markdown content.

Concepts:
- Node: A concept, question, or insight identified by a stable id (e.g. 'calculus').
- Relationship: A typed, weighted, directed edge (e.g. 'prerequisite', 'leads_to', 'relates_to').
- Prerequisite direction: a prerequisite edge points INTO the concept that depends on it.
- Path: The cheapest chain of edges between two concepts. Stronger relationships cost less.

Use 'graph_related' or 'graph_neighborhood' to explore around a concept.
Use 'graph_prerequisites' to plan what to learn first, and 'graph_path' to connect two concepts.
If a query reports the graph is not ready, call 'graph_rebuild' once and retry.
`

	return mcp.NewGetPromptResult(
		"graphlord-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
