// Package api exposes the graph registry over HTTP.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/graphlord/graphlord/pkg/builder"
	"github.com/graphlord/graphlord/pkg/engine"
	"github.com/graphlord/graphlord/pkg/graph"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// GraphRegistry is the snapshot access the server needs. The engine registry
// satisfies it; tests substitute their own.
type GraphRegistry interface {
	Ready() bool
	Info() (engine.Info, error)
	Export() (engine.Export, error)
	Validate() (graph.ValidationReport, error)
	Node(id string) (graph.Node, error)
	Neighborhood(id string, radius int, filter []graph.Relationship) (*graph.NeighborhoodResult, error)
	ShortestPath(from, to string) (*graph.PathResult, error)
	Prerequisites(id string) (*graph.PrerequisitesResult, error)
	Centrality(limit int) ([]graph.CentralityScore, error)
	Bridges(limit int) ([]graph.Node, error)
	Rebuild(ctx context.Context, skipCache bool) (*builder.BuildStats, error)
}

// Server encapsulates the HTTP API server
type Server struct {
	registry GraphRegistry
	server   *http.Server
	logger   *zap.Logger
}

// NewServer creates a new API server instance
func NewServer(registry GraphRegistry, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{registry: registry, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/graph/info", s.handleInfo)
	mux.HandleFunc("/v1/graph/validate", s.handleValidate)
	mux.HandleFunc("/v1/graph/node", s.handleNode)
	mux.HandleFunc("/v1/graph/related", s.handleRelated)
	mux.HandleFunc("/v1/graph/path", s.handlePath)
	mux.HandleFunc("/v1/graph/prerequisites", s.handlePrerequisites)
	mux.HandleFunc("/v1/graph/neighborhood", s.handleNeighborhood)
	mux.HandleFunc("/v1/graph/centrality", s.handleCentrality)
	mux.HandleFunc("/v1/graph/bridges", s.handleBridges)
	mux.HandleFunc("/v1/graph/rebuild", s.handleRebuild)
	mux.HandleFunc("/v1/reports", s.handleReports)

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := s.withLogging(s.withRecovery(withSecureHeaders(mux)))

	if addr == "" {
		addr = ":8090"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler, for httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	s.logger.Info("server_starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("server_stopping")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Ready: s.registry.Ready()})
}

// Middleware: Panic Recovery
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic_recovered",
					zap.Any("error", err),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}
		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		s.logger.Info("http_request",
			zap.String("trace_id", traceID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
