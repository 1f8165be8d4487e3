// SPDX-License-Identifier: MIT

// Package config loads and validates the canalview configuration with
// precedence ENV > config file > defaults.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Upstream dataset defaults (iptv-org public API).
const (
	DefaultChannelsURL = "https://iptv-org.github.io/api/channels.json"
	DefaultStreamsURL  = "https://iptv-org.github.io/api/streams.json"
)

// Deployment defaults. The container contract fixes the port default at
// 10000 and the request timeout at 120s.
const (
	DefaultPort           = 10000
	DefaultRequestTimeout = 120 * time.Second
	DefaultCacheTTL       = 30 * time.Minute
	DefaultCountry        = "MX"
)

// AppConfig holds the full runtime configuration of the daemon.
type AppConfig struct {
	// HTTP server
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// UI behaviour
	DefaultCountry string

	// Upstream dataset
	ChannelsURL     string
	StreamsURL      string
	UpstreamTimeout time.Duration
	UpstreamRPS     float64

	// Cache
	DataDir   string
	CacheTTL  time.Duration
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Watch history
	HistoryPath string

	// Background refresh
	InitialRefresh bool
	WatchCacheFile bool

	// Observability
	LogLevel     string
	MetricsAddr  string
	OTelEndpoint string
	OTelExporter string // "http" or "grpc"
	OTelSampling float64

	// Rate limiting
	GlobalRateLimit  int // requests per minute per IP, 0 disables
	RefreshRateLimit int // requests per minute per IP for POST /refresh
}

// FromEnv builds an AppConfig from environment variables on top of defaults.
// An optional config file (see LoadFile) sits between the two.
func FromEnv() AppConfig {
	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr:       ":" + strconv.Itoa(DefaultPort),
		ReadTimeout:      DefaultRequestTimeout,
		WriteTimeout:     DefaultRequestTimeout,
		ShutdownTimeout:  30 * time.Second,
		DefaultCountry:   DefaultCountry,
		ChannelsURL:      DefaultChannelsURL,
		StreamsURL:       DefaultStreamsURL,
		UpstreamTimeout:  20 * time.Second,
		UpstreamRPS:      2,
		DataDir:          "cache",
		CacheTTL:         DefaultCacheTTL,
		HistoryPath:      "", // disabled unless set
		InitialRefresh:   true,
		WatchCacheFile:   false,
		LogLevel:         "info",
		MetricsAddr:      "",
		OTelExporter:     "http",
		OTelSampling:     1.0,
		GlobalRateLimit:  600,
		RefreshRateLimit: 10,
	}
}

// applyEnv overrides cfg fields from the environment. PORT and
// DEFAULT_COUNTRY are read without a prefix to match the deployment
// contract; everything else uses the CANALVIEW_ prefix.
func applyEnv(cfg *AppConfig) {
	cfg.ListenAddr = ":" + strconv.Itoa(ParseInt("PORT", portFromAddr(cfg.ListenAddr)))
	cfg.DefaultCountry = ParseString("DEFAULT_COUNTRY", cfg.DefaultCountry)

	cfg.ReadTimeout = ParseDuration("CANALVIEW_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = ParseDuration("CANALVIEW_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ShutdownTimeout = ParseDuration("CANALVIEW_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.ChannelsURL = ParseString("CANALVIEW_CHANNELS_URL", cfg.ChannelsURL)
	cfg.StreamsURL = ParseString("CANALVIEW_STREAMS_URL", cfg.StreamsURL)
	cfg.UpstreamTimeout = ParseDuration("CANALVIEW_UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.UpstreamRPS = ParseFloat("CANALVIEW_UPSTREAM_RPS", cfg.UpstreamRPS)

	cfg.DataDir = ParseString("CANALVIEW_DATA", cfg.DataDir)
	cfg.CacheTTL = ParseDuration("CANALVIEW_CACHE_TTL", cfg.CacheTTL)
	cfg.RedisAddr = ParseString("CANALVIEW_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPass = ParseString("CANALVIEW_REDIS_PASSWORD", cfg.RedisPass)
	cfg.RedisDB = ParseInt("CANALVIEW_REDIS_DB", cfg.RedisDB)

	cfg.HistoryPath = ParseString("CANALVIEW_HISTORY_DB", cfg.HistoryPath)

	cfg.InitialRefresh = ParseBool("CANALVIEW_INITIAL_REFRESH", cfg.InitialRefresh)
	cfg.WatchCacheFile = ParseBool("CANALVIEW_WATCH_CACHE", cfg.WatchCacheFile)

	cfg.LogLevel = ParseString("CANALVIEW_LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsAddr = ParseString("CANALVIEW_METRICS_ADDR", cfg.MetricsAddr)
	cfg.OTelEndpoint = ParseString("CANALVIEW_OTEL_ENDPOINT", cfg.OTelEndpoint)
	cfg.OTelExporter = ParseString("CANALVIEW_OTEL_EXPORTER", cfg.OTelExporter)
	cfg.OTelSampling = ParseFloat("CANALVIEW_OTEL_SAMPLING", cfg.OTelSampling)

	cfg.GlobalRateLimit = ParseInt("CANALVIEW_RATE_LIMIT", cfg.GlobalRateLimit)
	cfg.RefreshRateLimit = ParseInt("CANALVIEW_REFRESH_RATE_LIMIT", cfg.RefreshRateLimit)
}

func portFromAddr(addr string) int {
	if len(addr) > 1 && addr[0] == ':' {
		if p, err := strconv.Atoi(addr[1:]); err == nil {
			return p
		}
	}
	return DefaultPort
}

// Validate checks the configuration for values that cannot work at runtime.
func (c AppConfig) Validate() error {
	port := portFromAddr(c.ListenAddr)
	if port < 1 || port > 65535 {
		return fmt.Errorf("listen port %d out of range", port)
	}
	for _, raw := range []string{c.ChannelsURL, c.StreamsURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid upstream URL %q: %w", raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported upstream URL scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("upstream URL %q is missing host", raw)
		}
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.DataDir == "" && c.RedisAddr == "" {
		return fmt.Errorf("either a data dir or a redis address is required")
	}
	switch c.OTelExporter {
	case "", "http", "grpc":
	default:
		return fmt.Errorf("unsupported otel exporter %q (supported: http, grpc)", c.OTelExporter)
	}
	return nil
}
