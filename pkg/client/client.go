// Package client is the Go SDK for the graphlord daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/graphlord/graphlord/pkg/graph"
)

// ErrNodeNotFound is returned when the daemon does not know the node id.
var ErrNodeNotFound = errors.New("node not found")

// ErrNotReady is returned while the daemon has no snapshot installed yet.
var ErrNotReady = errors.New("graph not ready")

// Client is the graphlord SDK client.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
	retries  int
}

// NewClient creates a new graphlord client.
// endpoint defaults to "http://127.0.0.1:8090" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8090"
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: DefaultBackoff(),
		retries: 3,
	}
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Health, error) {
	var health Health
	err := c.getJSON(ctx, "/v1/health", nil, &health)
	return health, err
}

// Info fetches snapshot statistics and build provenance.
func (c *Client) Info(ctx context.Context) (GraphInfo, error) {
	var info GraphInfo
	err := c.getJSON(ctx, "/v1/graph/info", nil, &info)
	return info, err
}

// Export fetches the full graph dump.
func (c *Client) Export(ctx context.Context) (GraphExport, error) {
	var export GraphExport
	err := c.getJSON(ctx, "/v1/graph", nil, &export)
	return export, err
}

// Validate fetches the daemon's lint report for the snapshot.
func (c *Client) Validate(ctx context.Context) (graph.ValidationReport, error) {
	var report graph.ValidationReport
	err := c.getJSON(ctx, "/v1/graph/validate", nil, &report)
	return report, err
}

// Node looks up a single node by id.
func (c *Client) Node(ctx context.Context, id string) (graph.Node, error) {
	var node graph.Node
	err := c.getJSON(ctx, "/v1/graph/node", url.Values{"id": {id}}, &node)
	return node, err
}

// Related fetches the direct neighborhood of a node.
func (c *Client) Related(ctx context.Context, id string, opts RelatedOptions) (RelatedResult, error) {
	params := url.Values{"id": {id}}
	if opts.Relationship != "" {
		params.Set("relationship", opts.Relationship)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	var result RelatedResult
	err := c.getJSON(ctx, "/v1/graph/related", params, &result)
	return result, err
}

// Path fetches the cheapest directed path between two nodes. An unreachable
// target is reported via Found=false, not an error.
func (c *Client) Path(ctx context.Context, from, to string) (graph.PathResult, error) {
	var result graph.PathResult
	err := c.getJSON(ctx, "/v1/graph/path", url.Values{"from": {from}, "to": {to}}, &result)
	return result, err
}

// Prerequisites fetches the ordered prerequisite closure of a node.
func (c *Client) Prerequisites(ctx context.Context, id string) (PrerequisitesResult, error) {
	var result PrerequisitesResult
	err := c.getJSON(ctx, "/v1/graph/prerequisites", url.Values{"id": {id}}, &result)
	return result, err
}

// Neighborhood fetches nodes and edges within radius hops of a node.
func (c *Client) Neighborhood(ctx context.Context, id string, radius int, relationship string) (graph.NeighborhoodResult, error) {
	params := url.Values{"id": {id}}
	if radius > 0 {
		params.Set("radius", strconv.Itoa(radius))
	}
	if relationship != "" {
		params.Set("relationship", relationship)
	}
	var result graph.NeighborhoodResult
	err := c.getJSON(ctx, "/v1/graph/neighborhood", params, &result)
	return result, err
}

// Centrality fetches the top nodes by normalized degree centrality.
func (c *Client) Centrality(ctx context.Context, limit int) ([]graph.CentralityScore, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var scores []graph.CentralityScore
	err := c.getJSON(ctx, "/v1/graph/centrality", params, &scores)
	return scores, err
}

// Bridges fetches the top nodes connecting otherwise-distant graph regions.
func (c *Client) Bridges(ctx context.Context, limit int) ([]graph.Node, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var bridges []graph.Node
	err := c.getJSON(ctx, "/v1/graph/bridges", params, &bridges)
	return bridges, err
}

// Rebuild asks the daemon to rebuild its snapshot. Rebuilds are not retried;
// the caller decides whether a failed rebuild should be repeated.
func (c *Client) Rebuild(ctx context.Context, skipCache bool) (BuildStats, error) {
	body, err := json.Marshal(rebuildRequest{SkipCache: skipCache})
	if err != nil {
		return BuildStats{}, fmt.Errorf("failed to marshal rebuild request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/graph/rebuild", bytes.NewReader(body))
	if err != nil {
		return BuildStats{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return BuildStats{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BuildStats{}, statusError(resp)
	}

	var stats BuildStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return BuildStats{}, err
	}
	return stats, nil
}

// getJSON fetches a GET endpoint and decodes its body, retrying transport
// errors and 5xx responses with exponential backoff.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	target := c.endpoint + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err
		}

		err = statusError(resp)
		resp.Body.Close()
		if resp.StatusCode >= 500 && !errors.Is(err, ErrNotReady) {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

// statusError maps a non-200 response to an error, using the daemon's JSON
// error body when present.
func statusError(resp *http.Response) error {
	var body apiError
	json.NewDecoder(resp.Body).Decode(&body)

	switch {
	case resp.StatusCode == http.StatusNotFound && body.Error == "node_not_found":
		return ErrNodeNotFound
	case resp.StatusCode == http.StatusServiceUnavailable && body.Error == "graph_not_ready":
		return ErrNotReady
	case body.Error != "":
		return fmt.Errorf("daemon error: %s (status %d)", body.Error, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
}
