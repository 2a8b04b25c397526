// Package reports renders graph exports as CSV or JSON documents for
// offline analysis.
package reports

import (
	"context"
	"io"

	"github.com/graphlord/graphlord/pkg/engine"
	"github.com/graphlord/graphlord/pkg/graph"
)

type ReportType string

const (
	ReportTypeNodes      ReportType = "nodes"
	ReportTypeEdges      ReportType = "edges"
	ReportTypeCentrality ReportType = "centrality"
)

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatJSON ReportFormat = "json"
)

// ReportParams controls report generation.
type ReportParams struct {
	Format ReportFormat
	// Limit truncates row-oriented reports; 0 means everything.
	Limit int
}

// Source defines the snapshot access required by reports. The engine
// registry satisfies it.
type Source interface {
	Export() (engine.Export, error)
	Centrality(limit int) ([]graph.CentralityScore, error)
}

type Generator interface {
	Generate(ctx context.Context, params ReportParams) (io.Reader, error)
}

// ContentType returns the MIME type for a report format.
func ContentType(format ReportFormat) string {
	if format == ReportFormatJSON {
		return "application/json"
	}
	return "text/csv"
}
