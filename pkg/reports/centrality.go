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

// CentralityReport lists nodes ranked by normalized degree centrality.
type CentralityReport struct {
	source Source
}

// NewCentralityReport creates a new CentralityReport generator.
func NewCentralityReport(s Source) *CentralityReport {
	return &CentralityReport{source: s}
}

// Generate renders the centrality ranking in the requested format.
func (r *CentralityReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	scores, err := r.source.Centrality(params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute centrality: %w", err)
	}

	if params.Format == ReportFormatJSON {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(scores); err != nil {
			return nil, fmt.Errorf("failed to encode scores: %w", err)
		}
		return buf, nil
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"node_id", "degree", "in_degree", "out_degree"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for _, s := range scores {
		row := []string{
			s.NodeID,
			strconv.FormatFloat(float64(s.Degree), 'f', 6, 32),
			strconv.FormatFloat(float64(s.InDegree), 'f', 6, 32),
			strconv.FormatFloat(float64(s.OutDegree), 'f', 6, 32),
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
