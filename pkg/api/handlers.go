package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/graphlord/graphlord/pkg/engine"
	"github.com/graphlord/graphlord/pkg/graph"
	"github.com/graphlord/graphlord/pkg/reports"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeQueryError maps query failures to HTTP statuses. Missing node ids are
// 404s; queries before the first snapshot are 503s.
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		http.Error(w, `{"error":"node_not_found"}`, http.StatusNotFound)
	case errors.Is(err, engine.ErrNoGraph):
		http.Error(w, `{"error":"graph_not_ready"}`, http.StatusServiceUnavailable)
	default:
		s.logger.Error("query_failed",
			zap.String("trace_id", getTraceID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
	}
}

// requireGet rejects non-GET methods.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// intParam parses an integer query parameter with a default.
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// relFilter builds an optional relationship filter from a query parameter.
func relFilter(r *http.Request) []graph.Relationship {
	raw := r.URL.Query().Get("relationship")
	if raw == "" {
		return nil
	}
	return []graph.Relationship{graph.ParseRelationship(raw)}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	export, err := s.registry.Export()
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	info, err := s.registry.Info()
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	report, err := s.registry.Validate()
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}
	node, err := s.registry.Node(id)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// handleRelated serves the radius-1 neighborhood of a node, optionally
// filtered to one relationship type and truncated to limit entries.
func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}

	result, err := s.registry.Neighborhood(id, 1, relFilter(r))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	nodes := result.Nodes
	if limit := intParam(r, "limit", 0); limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}
	writeJSON(w, http.StatusOK, RelatedResponse{
		Source:  result.Center,
		Related: nodes,
		Count:   len(nodes),
	})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		http.Error(w, `{"error":"missing_from_or_to"}`, http.StatusBadRequest)
		return
	}
	result, err := s.registry.ShortestPath(from, to)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePrerequisites(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}
	result, err := s.registry.Prerequisites(id)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	ordered := result.Ordered
	if ordered == nil {
		ordered = []graph.Node{}
	}
	writeJSON(w, http.StatusOK, PrerequisitesResponse{
		Target:        result.Target,
		Prerequisites: ordered,
		Count:         len(ordered),
		HasCycles:     result.HasCycles,
	})
}

func (s *Server) handleNeighborhood(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}
	radius := intParam(r, "radius", 1)
	result, err := s.registry.Neighborhood(id, radius, relFilter(r))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCentrality(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	scores, err := s.registry.Centrality(intParam(r, "limit", 10))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	if scores == nil {
		scores = []graph.CentralityScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleBridges(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	bridges, err := s.registry.Bridges(intParam(r, "limit", 10))
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	if bridges == nil {
		bridges = []graph.Node{}
	}
	writeJSON(w, http.StatusOK, bridges)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req RebuildRequest
	if r.Body != nil {
		// An empty body means default options.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
			return
		}
	}

	stats, err := s.registry.Rebuild(r.Context(), req.SkipCache)
	if err != nil {
		s.logger.Error("rebuild_failed",
			zap.String("trace_id", getTraceID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, `{"error":"rebuild_failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	reportType := reports.ReportType(r.URL.Query().Get("type"))
	format := reports.ReportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = reports.ReportFormatCSV
	}
	if format != reports.ReportFormatCSV && format != reports.ReportFormatJSON {
		http.Error(w, `{"error":"invalid_format"}`, http.StatusBadRequest)
		return
	}

	gen, err := reports.NewReportGenerator(reportType, s.registry)
	if err != nil {
		http.Error(w, `{"error":"invalid_report_type"}`, http.StatusBadRequest)
		return
	}

	out, err := gen.Generate(r.Context(), reports.ReportParams{
		Format: format,
		Limit:  intParam(r, "limit", 0),
	})
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", reports.ContentType(format))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, out)
}
