// SPDX-License-Identifier: MIT

// canalviewd is the CanalView daemon: an IPTV channel browser over the
// iptv-org dataset with a web UI, JSON API and M3U export.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/canalview/canalview/internal/cache"
	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/config"
	"github.com/canalview/canalview/internal/daemon"
	"github.com/canalview/canalview/internal/health"
	"github.com/canalview/canalview/internal/history"
	"github.com/canalview/canalview/internal/iptvorg"
	"github.com/canalview/canalview/internal/jobs"
	xlog "github.com/canalview/canalview/internal/log"
	"github.com/canalview/canalview/internal/telemetry"
	"github.com/canalview/canalview/internal/version"
	"github.com/canalview/canalview/internal/web"
)

const payloadFileName = "iptv_cache.json"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	// Safe logger defaults until config is loaded
	xlog.Configure(xlog.Config{
		Level:   "info",
		Service: "canalview",
		Version: version.Version,
	})
	logger := xlog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path: explicit flag, otherwise ${CANALVIEW_DATA}/config.yaml
	// when it exists.
	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("CANALVIEW_DATA", "cache"))
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	cfg, err := config.Load(effectiveConfigPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// The logger is configured once; only the level can change after the
	// config is loaded.
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("daemon failed")
	}
}

func run(ctx context.Context, cfg config.AppConfig) error {
	logger := xlog.WithComponent("main")

	// Tracing
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTelEndpoint != "",
		ServiceName:    "canalview",
		ServiceVersion: version.Version,
		ExporterType:   cfg.OTelExporter,
		Endpoint:       cfg.OTelEndpoint,
		SamplingRate:   cfg.OTelSampling,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	// Payload cache: Redis when configured, otherwise a file in the data dir
	var (
		store      cache.Store
		fileStore  *cache.FileStore
		redisStore *cache.RedisStore
	)
	if cfg.RedisAddr != "" {
		redisStore, err = cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, xlog.WithComponent("cache"))
		if err != nil {
			return fmt.Errorf("init redis cache: %w", err)
		}
		store = redisStore
	} else {
		fileStore, err = cache.NewFileStore(cfg.DataDir, payloadFileName)
		if err != nil {
			return fmt.Errorf("init file cache: %w", err)
		}
		store = fileStore
	}

	// Upstream client, catalog and refresh job
	client := iptvorg.New(cfg.ChannelsURL, cfg.StreamsURL, iptvorg.Options{
		Timeout: cfg.UpstreamTimeout,
		RPS:     cfg.UpstreamRPS,
	})
	cat := catalog.NewStore()
	refresher := jobs.NewRefresher(client, store, cat, cfg.CacheTTL)

	// Watch history (optional)
	var hist *history.Store
	if cfg.HistoryPath != "" {
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		logger.Info().
			Str("path", cfg.HistoryPath).
			Msg("watch history enabled")
	}

	// Health checks
	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewCatalogChecker(cat.Ready))
	hm.RegisterChecker(health.NewLastRefreshChecker(2*cfg.CacheTTL, refresher.LastRun))
	if redisStore != nil {
		hm.RegisterChecker(health.NewFuncChecker("redis", func(ctx context.Context) health.CheckResult {
			if err := redisStore.HealthCheck(ctx); err != nil {
				return health.CheckResult{Status: health.StatusDegraded, Error: err.Error()}
			}
			return health.CheckResult{Status: health.StatusHealthy}
		}))
	}

	srv, err := web.New(cfg, cat, refresher, hist, hm)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}

	mgr, err := daemon.NewManager(cfg, srv.Router(), promhttp.Handler())
	if err != nil {
		return fmt.Errorf("init daemon manager: %w", err)
	}

	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	if hist != nil {
		mgr.RegisterShutdownHook("history", func(context.Context) error { return hist.Close() })
	}
	if redisStore != nil {
		mgr.RegisterShutdownHook("redis", func(context.Context) error { return redisStore.Close() })
	}

	// Background jobs share the daemon lifetime
	jobsCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	if cfg.InitialRefresh {
		go func() {
			if _, err := refresher.Refresh(jobsCtx); err != nil {
				logger.Warn().
					Err(err).
					Str("event", "main.initial_refresh_failed").
					Msg("initial refresh failed, catalog stays empty until the next attempt")
			}
		}()
	}

	go jobs.NewScheduler(refresher, cfg.CacheTTL).Run(jobsCtx)

	if cfg.WatchCacheFile && fileStore != nil {
		watcher := jobs.NewCacheWatcher(refresher, fileStore.Path())
		go func() {
			if err := watcher.Run(jobsCtx); err != nil {
				logger.Error().
					Err(err).
					Str("event", "main.watcher_failed").
					Msg("cache watcher stopped with error")
			}
		}()
	}

	return mgr.Start(ctx)
}
