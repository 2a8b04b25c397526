package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// EdgesReport lists every edge in the snapshot.
type EdgesReport struct {
	source Source
}

// NewEdgesReport creates a new EdgesReport generator.
func NewEdgesReport(s Source) *EdgesReport {
	return &EdgesReport{source: s}
}

// Generate renders the edge list in the requested format.
func (r *EdgesReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	export, err := r.source.Export()
	if err != nil {
		return nil, fmt.Errorf("failed to export graph: %w", err)
	}

	edges := export.Edges
	if params.Limit > 0 && params.Limit < len(edges) {
		edges = edges[:params.Limit]
	}

	if params.Format == ReportFormatJSON {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(edges); err != nil {
			return nil, fmt.Errorf("failed to encode edges: %w", err)
		}
		return buf, nil
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"from", "to", "relationship", "weight", "origin"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for _, e := range edges {
		row := []string{
			e.From,
			e.To,
			e.Relationship.Name(),
			strconv.FormatFloat(float64(e.Weight), 'f', -1, 32),
			string(e.Origin),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush writer: %w", err)
	}
	return buf, nil
}
