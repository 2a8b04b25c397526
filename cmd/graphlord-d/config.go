package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/graphlord/graphlord/pkg/builder"
)

const (
	defaultAddr          = "127.0.0.1:8090"
	defaultWatchInterval = 30 * time.Second
	defaultRedisAddr     = "127.0.0.1:6379"
	defaultCacheBackend  = "sqlite"
)

type Config struct {
	ContentPath     string
	ManualEdgesPath string
	Addr            string
	CacheBackend    string
	DBPath          string
	RedisAddr       string
	// WatchInterval is how often the content fingerprint is re-checked.
	// Zero disables watching.
	WatchInterval time.Duration
	ErrorMode     builder.ErrorMode
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	contentPath := envOrDefault("GRAPHLORD_CONTENT_PATH", "")
	manualEdgesPath := os.Getenv("GRAPHLORD_MANUAL_EDGES")
	addr := addrFromEnv(defaultAddr)
	cacheBackend := envOrDefault("GRAPHLORD_CACHE", defaultCacheBackend)
	dbPath := envOrDefault("GRAPHLORD_DB_PATH", filepath.Join(cwd, "graphlord.db"))
	redisAddr := envOrDefault("GRAPHLORD_REDIS_ADDR", defaultRedisAddr)
	errorMode := envOrDefault("GRAPHLORD_ERROR_MODE", "collect")

	watchInterval := defaultWatchInterval
	if watchEnv := os.Getenv("GRAPHLORD_WATCH_INTERVAL"); watchEnv != "" {
		parsed, err := time.ParseDuration(watchEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRAPHLORD_WATCH_INTERVAL: %w", err)
		}
		if parsed < 0 {
			return Config{}, errors.New("GRAPHLORD_WATCH_INTERVAL must not be negative")
		}
		watchInterval = parsed
	}

	flagSet := flag.NewFlagSet("graphlord-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagContent := flagSet.String("content", contentPath, "path to the markdown content tree")
	flagManualEdges := flagSet.String("manual-edges", manualEdgesPath, "path to the manual edges JSON file")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagCache := flagSet.String("cache", cacheBackend, "snapshot cache backend: sqlite|redis|off")
	flagDB := flagSet.String("db", dbPath, "path to SQLite cache database")
	flagRedis := flagSet.String("redis-addr", redisAddr, "redis address when cache=redis")
	flagWatch := flagSet.String("watch-interval", watchInterval.String(), "content re-check interval, 0 to disable")
	flagErrorMode := flagSet.String("error-mode", errorMode, "file error handling: fail_fast|collect|skip")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	watchParsed, err := time.ParseDuration(*flagWatch)
	if err != nil {
		return Config{}, fmt.Errorf("invalid watch interval: %w", err)
	}
	if watchParsed < 0 {
		return Config{}, errors.New("watch interval must not be negative")
	}

	mode, err := parseErrorMode(*flagErrorMode)
	if err != nil {
		return Config{}, err
	}

	config := Config{
		ContentPath:     resolvePath(*flagContent, cwd),
		ManualEdgesPath: resolvePath(*flagManualEdges, cwd),
		Addr:            strings.TrimSpace(*flagAddr),
		CacheBackend:    normalizeCacheBackend(*flagCache),
		DBPath:          resolvePath(*flagDB, cwd),
		RedisAddr:       strings.TrimSpace(*flagRedis),
		WatchInterval:   watchParsed,
		ErrorMode:       mode,
	}

	if config.ContentPath == "" {
		return Config{}, errors.New("content path is required (set -content or GRAPHLORD_CONTENT_PATH)")
	}
	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.CacheBackend != "sqlite" && config.CacheBackend != "redis" && config.CacheBackend != "off" {
		return Config{}, fmt.Errorf("unsupported cache backend: %s", config.CacheBackend)
	}
	if config.CacheBackend == "redis" && config.RedisAddr == "" {
		return Config{}, errors.New("cache=redis requires redis-addr")
	}

	return config, nil
}

func parseErrorMode(mode string) (builder.ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "fail_fast", "fail-fast", "strict":
		return builder.FailFast, nil
	case "", "collect":
		return builder.Collect, nil
	case "skip", "lenient":
		return builder.Skip, nil
	default:
		return builder.Collect, fmt.Errorf("unsupported error mode: %s", mode)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("GRAPHLORD_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("GRAPHLORD_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}

func normalizeCacheBackend(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "sqlite", "sqlite3":
		return "sqlite"
	case "redis":
		return "redis"
	case "off", "disabled", "none":
		return "off"
	default:
		return strings.ToLower(strings.TrimSpace(backend))
	}
}
