package reports

import "fmt"

// NewReportGenerator creates a report generator based on the report type.
func NewReportGenerator(reportType ReportType, source Source) (Generator, error) {
	switch reportType {
	case ReportTypeNodes:
		return NewNodesReport(source), nil
	case ReportTypeEdges:
		return NewEdgesReport(source), nil
	case ReportTypeCentrality:
		return NewCentralityReport(source), nil
	default:
		return nil, fmt.Errorf("unknown report type: %s", reportType)
	}
}
