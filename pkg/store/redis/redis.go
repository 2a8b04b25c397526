// Package redis provides a GraphCache backed by a shared Redis instance,
// letting several daemon processes reuse one built snapshot.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/graphlord/graphlord/pkg/graph"
	"github.com/graphlord/graphlord/pkg/store"
)

const (
	snapshotKey = "graphlord:graph:snapshot"
	metaKey     = "graphlord:graph:meta"
)

// Cache is the Redis-backed GraphCache.
type Cache struct {
	client *redis.Client
}

var _ store.GraphCache = (*Cache)(nil)

// NewCache wraps an existing Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// snapshot is the JSON payload stored under snapshotKey.
type snapshot struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// IsFresh compares the stored metadata against the content fingerprint.
func (c *Cache) IsFresh(ctx context.Context, fingerprint string) (bool, error) {
	data, err := c.client.Get(ctx, metaKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to GET %s: %w", metaKey, err)
	}
	var meta store.Metadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return false, fmt.Errorf("failed to unmarshal graph meta: %w", err)
	}
	return meta.SchemaVersion == store.SchemaVersion && meta.Fingerprint == fingerprint, nil
}

// Load reads the cached snapshot back into a graph.
func (c *Cache) Load(ctx context.Context) (*graph.Graph, store.Metadata, error) {
	metaData, err := c.client.Get(ctx, metaKey).Result()
	if err == redis.Nil {
		return nil, store.Metadata{}, store.ErrEmptyCache
	}
	if err != nil {
		return nil, store.Metadata{}, fmt.Errorf("failed to GET %s: %w", metaKey, err)
	}
	var meta store.Metadata
	if err := json.Unmarshal([]byte(metaData), &meta); err != nil {
		return nil, store.Metadata{}, fmt.Errorf("failed to unmarshal graph meta: %w", err)
	}

	data, err := c.client.Get(ctx, snapshotKey).Result()
	if err == redis.Nil {
		return nil, store.Metadata{}, store.ErrEmptyCache
	}
	if err != nil {
		return nil, store.Metadata{}, fmt.Errorf("failed to GET %s: %w", snapshotKey, err)
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, store.Metadata{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	g := graph.New()
	for _, n := range snap.Nodes {
		g.AddNode(n)
	}
	for _, e := range snap.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, store.Metadata{}, fmt.Errorf("cached edge references missing node: %w", err)
		}
	}
	return g, meta, nil
}

// Save replaces both keys atomically via a transaction pipeline.
func (c *Cache) Save(ctx context.Context, g *graph.Graph, meta store.Metadata) error {
	meta.SchemaVersion = store.SchemaVersion

	snapData, err := json.Marshal(snapshot{Nodes: g.Nodes(), Edges: g.Edges()})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal graph meta: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, snapshotKey, snapData, 0)
	pipe.Set(ctx, metaKey, metaData, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write snapshot keys: %w", err)
	}
	return nil
}

// Close releases the underlying client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
