package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/graphlord/graphlord/pkg/api"
	"github.com/graphlord/graphlord/pkg/builder"
	"github.com/graphlord/graphlord/pkg/content"
	"github.com/graphlord/graphlord/pkg/engine"
	"github.com/graphlord/graphlord/pkg/graph"
	"github.com/graphlord/graphlord/pkg/store"
	redisstore "github.com/graphlord/graphlord/pkg/store/redis"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Fatal("invalid_config", zap.Error(err))
	}

	logger.Info("system_started",
		zap.String("component", "graphlord-d"),
		zap.String("content_path", cfg.ContentPath),
		zap.String("cache", cfg.CacheBackend),
		zap.String("addr", cfg.Addr),
	)

	cache, err := openCache(cfg)
	if err != nil {
		logger.Fatal("failed_to_init_cache", zap.Error(err))
	}
	if cache != nil {
		defer cache.Close()
	}

	registry := engine.NewRegistry(logger)
	registry.SetRebuilder(func(ctx context.Context, skipCache bool) (*graph.Graph, *builder.BuildStats, error) {
		b := builder.New(builder.MarkdownExtractor{}).
			WithContentPath(cfg.ContentPath).
			WithErrorMode(cfg.ErrorMode).
			WithLogger(logger)
		if cfg.ManualEdgesPath != "" {
			b = b.WithManualEdges(cfg.ManualEdgesPath)
		}
		if cache != nil {
			b = b.WithCache(cache)
		}
		if skipCache {
			b = b.SkipCache()
		}
		return b.Build(ctx)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := registry.Rebuild(ctx, false); err != nil {
		logger.Fatal("initial_build_failed", zap.Error(err))
	}

	if cfg.WatchInterval > 0 {
		go watchLoop(ctx, cfg.ContentPath, cfg.WatchInterval, registry, logger)
	}

	server := api.NewServer(registry, cfg.Addr, logger)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info("shutdown_initiated", zap.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Fatal("server_failed", zap.Error(err))
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", zap.Error(err))
	}
	logger.Info("shutdown_complete")
}

// openCache wires the configured snapshot cache backend. A nil cache means
// every build re-parses the content tree.
func openCache(cfg Config) (store.GraphCache, error) {
	switch cfg.CacheBackend {
	case "sqlite":
		return store.NewStore(cfg.DBPath)
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		return redisstore.NewCache(client), nil
	default:
		return nil, nil
	}
}

// rebuilder is the slice of the registry the watch loop needs.
type rebuilder interface {
	Rebuild(ctx context.Context, skipCache bool) (*builder.BuildStats, error)
}

// watchLoop re-checks the content fingerprint on an interval and triggers a
// rebuild when it changes. Fingerprint failures are logged and retried on
// the next tick.
func watchLoop(ctx context.Context, contentPath string, interval time.Duration, reg rebuilder, logger *zap.Logger) {
	last, err := content.Fingerprint(contentPath)
	if err != nil {
		logger.Warn("watch_fingerprint_failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := content.Fingerprint(contentPath)
		if err != nil {
			logger.Warn("watch_fingerprint_failed", zap.Error(err))
			continue
		}
		if current == last {
			continue
		}

		logger.Info("content_changed", zap.String("path", contentPath))
		if _, err := reg.Rebuild(ctx, false); err != nil {
			logger.Error("watch_rebuild_failed", zap.Error(err))
			continue
		}
		last = current
	}
}
