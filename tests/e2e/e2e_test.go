package e2e_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/graphlord/graphlord/pkg/client"
)

// TestEndToEnd exercises a running graphlord-d instance. Gated behind E2E=true
// because it needs the daemon up with real content.
func TestEndToEnd(t *testing.T) {
	if os.Getenv("E2E") != "true" {
		t.Skip("Skipping e2e test")
	}

	endpoint := os.Getenv("GRAPHLORD_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8090"
	}

	c := client.NewClient(endpoint)
	ctx := context.Background()

	// Poll Ping until the daemon answers.
	var health client.Health
	var err error
	for i := 0; i < 30; i++ {
		health, err = c.Ping(ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatal("Failed to ping server after 30 seconds")
	}
	if !health.Ready {
		t.Fatal("Daemon is up but has no snapshot")
	}

	info, err := c.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Stats.NodeCount == 0 {
		t.Fatal("Expected graph to have nodes")
	}

	export, err := c.Export(ctx)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(export.Nodes) != info.Stats.NodeCount {
		t.Errorf("Export has %d nodes, info reports %d", len(export.Nodes), info.Stats.NodeCount)
	}

	// Every node must be queryable individually.
	first := export.Nodes[0]
	node, err := c.Node(ctx, first.ID)
	if err != nil {
		t.Fatalf("Node(%s) failed: %v", first.ID, err)
	}
	if node.ID != first.ID {
		t.Errorf("Node(%s) returned %s", first.ID, node.ID)
	}

	related, err := c.Related(ctx, first.ID, client.RelatedOptions{})
	if err != nil {
		t.Fatalf("Related(%s) failed: %v", first.ID, err)
	}
	if related.Count != len(related.Related) {
		t.Errorf("Related count %d does not match %d entries", related.Count, len(related.Related))
	}

	// A rebuild on unchanged content must be served from the cache.
	stats, err := c.Rebuild(ctx, false)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !stats.FromCache {
		t.Errorf("Expected cache hit on unchanged content: %+v", stats)
	}
}
