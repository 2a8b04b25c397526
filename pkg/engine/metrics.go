package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GraphlordGraphNodes tracks the node count of the installed snapshot
	GraphlordGraphNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphlord_graph_nodes",
			Help: "Number of nodes in the currently served graph snapshot",
		},
	)

	// GraphlordGraphEdges tracks the edge count of the installed snapshot
	GraphlordGraphEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphlord_graph_edges",
			Help: "Number of edges in the currently served graph snapshot",
		},
	)

	// GraphlordBuildTotal tracks graph builds by outcome
	GraphlordBuildTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphlord_build_total",
			Help: "Total number of graph builds",
		},
		[]string{"result"},
	)

	// GraphlordBuildDuration tracks how long builds take
	GraphlordBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphlord_build_duration_seconds",
			Help:    "Graph build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// GraphlordQueryTotal tracks queries served, by operation
	GraphlordQueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphlord_query_total",
			Help: "Total number of graph queries served",
		},
		[]string{"op"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(GraphlordGraphNodes)
	prometheus.MustRegister(GraphlordGraphEdges)
	prometheus.MustRegister(GraphlordBuildTotal)
	prometheus.MustRegister(GraphlordBuildDuration)
	prometheus.MustRegister(GraphlordQueryTotal)
}
