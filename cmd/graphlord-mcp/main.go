package main

import (
	"fmt"
	"os"

	"github.com/graphlord/graphlord/pkg/mcp"
)

func main() {
	// Stdio transport; diagnostics must go to stderr.
	apiURL := os.Getenv("GRAPHLORD_URL")

	s := mcp.NewServer(apiURL)
	if err := s.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "graphlord-mcp: %v\n", err)
		os.Exit(1)
	}
}
