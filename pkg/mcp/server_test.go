package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// mockDaemon serves canned daemon responses for handler tests.
func mockDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/graph/info":
			w.Write([]byte(`{"stats":{"node_count":3,"edge_count":2,"relationships":{"prerequisite":2},"categories":{},"isolated_nodes":0},"from_cache":true}`))
		case "/v1/graph/related":
			if r.URL.Query().Get("id") == "ghost" {
				http.Error(w, `{"error":"node_not_found"}`, http.StatusNotFound)
				return
			}
			w.Write([]byte(`{"source":{"id":"algebra","title":"Algebra"},"related":[{"id":"calculus","title":"Calculus"}],"count":1}`))
		case "/v1/graph/path":
			w.Write([]byte(`{"path":[],"edges":[],"total_weight":0,"found":false}`))
		case "/v1/graph/rebuild":
			if r.Method != http.MethodPost {
				http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
				return
			}
			w.Write([]byte(`{"nodes_created":12,"edges_created":30,"files_processed":12,"from_cache":false}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPServer_ReadStats(t *testing.T) {
	ts := mockDaemon(t)
	defer ts.Close()

	s := NewServer(ts.URL)

	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: "graphlord://stats",
		},
	}

	result, err := s.handleReadStats(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadStats failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 resource content, got %d", len(result))
	}

	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected TextResourceContents")
	}
	if content.MIMEType != "application/json" {
		t.Errorf("Expected application/json, got %s", content.MIMEType)
	}

	var info map[string]interface{}
	if err := json.Unmarshal([]byte(content.Text), &info); err != nil {
		t.Errorf("Failed to parse result JSON: %v", err)
	}
}

func TestMCPServer_Related(t *testing.T) {
	ts := mockDaemon(t)
	defer ts.Close()

	s := NewServer(ts.URL)

	result, err := s.handleRelated(context.Background(), callRequest("graph_related", map[string]interface{}{
		"id": "algebra",
	}))
	if err != nil {
		t.Fatalf("handleRelated failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "calculus") {
		t.Errorf("Expected calculus in result, got %v", result.Content[0])
	}
}

func TestMCPServer_Related_MissingID(t *testing.T) {
	ts := mockDaemon(t)
	defer ts.Close()

	s := NewServer(ts.URL)

	result, err := s.handleRelated(context.Background(), callRequest("graph_related", nil))
	if err != nil {
		t.Fatalf("handleRelated failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for missing id")
	}
}

func TestMCPServer_Related_UnknownNode(t *testing.T) {
	ts := mockDaemon(t)
	defer ts.Close()

	s := NewServer(ts.URL)

	result, err := s.handleRelated(context.Background(), callRequest("graph_related", map[string]interface{}{
		"id": "ghost",
	}))
	if err != nil {
		t.Fatalf("handleRelated failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for unknown node")
	}
}

func TestMCPServer_Path_NotFound(t *testing.T) {
	ts := mockDaemon(t)
	defer ts.Close()

	s := NewServer(ts.URL)

	result, err := s.handlePath(context.Background(), callRequest("graph_path", map[string]interface{}{
		"from": "a",
		"to":   "b",
	}))
	if err != nil {
		t.Fatalf("handlePath failed: %v", err)
	}
	if result.IsError {
		t.Fatal("A missing path is a normal result, not a tool error")
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "No path") {
		t.Errorf("Expected no-path message, got %v", result.Content[0])
	}
}

func TestMCPServer_Rebuild(t *testing.T) {
	ts := mockDaemon(t)
	defer ts.Close()

	s := NewServer(ts.URL)

	result, err := s.handleRebuild(context.Background(), callRequest("graph_rebuild", map[string]interface{}{
		"skip_cache": true,
	}))
	if err != nil {
		t.Fatalf("handleRebuild failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "nodes_created") {
		t.Errorf("Expected build stats in result, got %v", result.Content[0])
	}
}
