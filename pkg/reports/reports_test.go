package reports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"testing"

	"github.com/graphlord/graphlord/pkg/builder"
	"github.com/graphlord/graphlord/pkg/engine"
	"github.com/graphlord/graphlord/pkg/graph"
)

func reportSource(t *testing.T) Source {
	t.Helper()
	g := graph.New()
	a := graph.NewNode("algebra", "Algebra")
	a.Category = "math"
	g.AddNode(a)
	g.AddNode(graph.NewNode("calculus", "Calculus"))
	g.AddNode(graph.NewNode("analysis", "Analysis"))
	for _, e := range []graph.Edge{
		graph.NewEdge("algebra", "calculus", graph.RelPrerequisite),
		graph.NewEdge("calculus", "analysis", graph.RelLeadsTo).WithWeight(0.5),
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	r := engine.NewRegistry(nil)
	r.Install(g, &builder.BuildStats{})
	return r
}

func readCSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	return rows
}

func TestNodesReport_CSV(t *testing.T) {
	gen, err := NewReportGenerator(ReportTypeNodes, reportSource(t))
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}
	out, err := gen.Generate(context.Background(), ReportParams{Format: ReportFormatCSV})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	rows := readCSV(t, out)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "title" {
		t.Errorf("header wrong: %v", rows[0])
	}
	if rows[1][0] != "algebra" || rows[1][2] != "math" {
		t.Errorf("first row wrong: %v", rows[1])
	}
}

func TestEdgesReport_JSON(t *testing.T) {
	gen, err := NewReportGenerator(ReportTypeEdges, reportSource(t))
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}
	out, err := gen.Generate(context.Background(), ReportParams{Format: ReportFormatJSON})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var edges []graph.Edge
	if err := json.NewDecoder(out).Decode(&edges); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[1].Weight != 0.5 {
		t.Errorf("edge fields lost: %+v", edges[1])
	}
}

func TestCentralityReport_CSVWithLimit(t *testing.T) {
	gen, err := NewReportGenerator(ReportTypeCentrality, reportSource(t))
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}
	out, err := gen.Generate(context.Background(), ReportParams{Format: ReportFormatCSV, Limit: 1})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	rows := readCSV(t, out)
	if len(rows) != 2 {
		t.Fatalf("limit not applied: %d rows", len(rows))
	}
	// calculus has one in and one out edge, the highest combined degree.
	if rows[1][0] != "calculus" {
		t.Errorf("expected calculus ranked first, got %v", rows[1])
	}
}

func TestNewReportGenerator_Unknown(t *testing.T) {
	if _, err := NewReportGenerator("bogus", reportSource(t)); err == nil {
		t.Fatal("expected error for unknown report type")
	}
}
