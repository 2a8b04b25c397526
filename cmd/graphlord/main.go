package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/graphlord/graphlord/pkg/client"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = `Usage: graphlord <command> [args]

Commands:
  info                        show graph statistics
  node <id>                   show a single node
  related <id> [rel]          show direct neighbors, optionally one relationship type
  path <from> <to>            show the learning path between two nodes
  prereqs <id>                show ordered prerequisites for a node
  centrality [limit]          rank nodes by degree centrality
  bridges [limit]             show nodes bridging distant graph regions
  validate                    lint the graph
  rebuild [--skip-cache]      rebuild the graph snapshot

The daemon endpoint defaults to http://127.0.0.1:8090; override with GRAPHLORD_URL.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	c := client.NewClient(os.Getenv("GRAPHLORD_URL"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(ctx, c)
	case "node":
		err = runNode(ctx, c, rest())
	case "related":
		err = runRelated(ctx, c, rest())
	case "path":
		err = runPath(ctx, c, rest())
	case "prereqs", "prerequisites":
		err = runPrereqs(ctx, c, rest())
	case "centrality":
		err = runCentrality(ctx, c, rest())
	case "bridges":
		err = runBridges(ctx, c, rest())
	case "validate":
		err = runValidate(ctx, c)
	case "rebuild":
		err = runRebuild(ctx, c, rest())
	case "version":
		fmt.Printf("graphlord %s (%s, built %s)\n", Version, Commit, BuildTime)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Is graphlord-d running?")
		os.Exit(1)
	}
}

func rest() []string {
	return os.Args[2:]
}

func runInfo(ctx context.Context, c *client.Client) error {
	info, err := c.Info(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Nodes: %d  Edges: %d  Isolated: %d\n",
		info.Stats.NodeCount, info.Stats.EdgeCount, info.Stats.IsolatedNodes)
	fmt.Printf("Built: %s (from cache: %v)\n", info.BuiltAt.Format(time.RFC3339), info.FromCache)
	if len(info.Stats.Relationships) > 0 {
		fmt.Println("Relationships:")
		for rel, count := range info.Stats.Relationships {
			fmt.Printf("  %-20s %d\n", rel, count)
		}
	}
	return nil
}

func runNode(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: graphlord node <id>")
	}
	node, err := c.Node(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", node.ID, node.Title)
	if node.Category != "" {
		fmt.Printf("  category: %s\n", node.Category)
	}
	if node.NodeType != "" {
		fmt.Printf("  type: %s\n", node.NodeType)
	}
	if !node.IsCanonical {
		fmt.Printf("  variant of: %s\n", node.CanonicalID)
	}
	return nil
}

func runRelated(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: graphlord related <id> [relationship]")
	}
	opts := client.RelatedOptions{}
	if len(args) > 1 {
		opts.Relationship = args[1]
	}

	result, err := c.Related(ctx, args[0], opts)
	if err != nil {
		return err
	}

	fmt.Printf("%s has %d neighbors:\n", result.Source.ID, result.Count)
	for _, node := range result.Related {
		fmt.Printf("  %s (%s)\n", node.ID, node.Title)
	}
	return nil
}

func runPath(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: graphlord path <from> <to>")
	}
	result, err := c.Path(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if !result.Found {
		fmt.Printf("No path from %s to %s.\n", args[0], args[1])
		return nil
	}
	for i, node := range result.Path {
		if i > 0 {
			fmt.Printf("  -[%s]->\n", result.Edges[i-1].Relationship.Name())
		}
		fmt.Printf("%s (%s)\n", node.ID, node.Title)
	}
	fmt.Printf("Total weight: %.2f\n", result.TotalWeight)
	return nil
}

func runPrereqs(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: graphlord prereqs <id>")
	}
	result, err := c.Prerequisites(ctx, args[0])
	if err != nil {
		return err
	}

	if result.Count == 0 {
		fmt.Printf("%s has no prerequisites.\n", result.Target.ID)
		return nil
	}
	fmt.Printf("Learn these before %s:\n", result.Target.ID)
	for i, node := range result.Prerequisites {
		fmt.Printf("  %d. %s (%s)\n", i+1, node.ID, node.Title)
	}
	if result.HasCycles {
		fmt.Println("Warning: prerequisite cycle detected; order is arbitrary.")
	}
	return nil
}

func runCentrality(ctx context.Context, c *client.Client, args []string) error {
	scores, err := c.Centrality(ctx, limitArg(args, 10))
	if err != nil {
		return err
	}

	for _, score := range scores {
		fmt.Printf("%-30s degree=%.3f in=%.3f out=%.3f\n",
			score.NodeID, score.Degree, score.InDegree, score.OutDegree)
	}
	return nil
}

func runBridges(ctx context.Context, c *client.Client, args []string) error {
	bridges, err := c.Bridges(ctx, limitArg(args, 10))
	if err != nil {
		return err
	}

	for _, node := range bridges {
		fmt.Printf("%s (%s)\n", node.ID, node.Title)
	}
	return nil
}

func runValidate(ctx context.Context, c *client.Client) error {
	report, err := c.Validate(ctx)
	if err != nil {
		return err
	}

	if report.Valid {
		fmt.Println("Graph is valid.")
		return nil
	}
	fmt.Printf("Found %d issues:\n", len(report.Issues))
	for _, issue := range report.Issues {
		fmt.Printf("  %s\n", issue)
	}
	return nil
}

func runRebuild(ctx context.Context, c *client.Client, args []string) error {
	skipCache := len(args) > 0 && args[0] == "--skip-cache"

	stats, err := c.Rebuild(ctx, skipCache)
	if err != nil {
		return err
	}

	if stats.FromCache {
		fmt.Printf("Loaded from cache: %d nodes, %d edges.\n", stats.NodesCreated, stats.EdgesCreated)
		return nil
	}
	fmt.Printf("Rebuilt: %d nodes, %d edges from %d files (%d skipped, %d deduped).\n",
		stats.NodesCreated, stats.EdgesCreated, stats.FilesProcessed, stats.FilesSkipped, stats.DedupedEdges)
	for _, ref := range stats.DanglingRefs {
		fmt.Printf("  dangling: %s\n", ref)
	}
	return nil
}

func limitArg(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return def
	}
	return n
}
