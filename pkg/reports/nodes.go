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

// NodesReport lists every node in the snapshot.
type NodesReport struct {
	source Source
}

// NewNodesReport creates a new NodesReport generator.
func NewNodesReport(s Source) *NodesReport {
	return &NodesReport{source: s}
}

// Generate renders the node list in the requested format.
func (r *NodesReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	export, err := r.source.Export()
	if err != nil {
		return nil, fmt.Errorf("failed to export graph: %w", err)
	}

	nodes := export.Nodes
	if params.Limit > 0 && params.Limit < len(nodes) {
		nodes = nodes[:params.Limit]
	}

	if params.Format == ReportFormatJSON {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(nodes); err != nil {
			return nil, fmt.Errorf("failed to encode nodes: %w", err)
		}
		return buf, nil
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"id", "title", "category", "source_id", "node_type", "is_canonical", "canonical_id"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for _, n := range nodes {
		row := []string{
			n.ID,
			n.Title,
			n.Category,
			n.SourceID,
			string(n.NodeType),
			strconv.FormatBool(n.IsCanonical),
			n.CanonicalID,
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
