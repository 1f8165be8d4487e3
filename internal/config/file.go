// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config file shape. All fields are optional;
// unset fields keep their previous value.
type fileConfig struct {
	Port           *int     `yaml:"port"`
	DefaultCountry *string  `yaml:"defaultCountry"`
	DataDir        *string  `yaml:"dataDir"`
	CacheTTL       *string  `yaml:"cacheTTL"`
	ChannelsURL    *string  `yaml:"channelsURL"`
	StreamsURL     *string  `yaml:"streamsURL"`
	RedisAddr      *string  `yaml:"redisAddr"`
	HistoryDB      *string  `yaml:"historyDB"`
	LogLevel       *string  `yaml:"logLevel"`
	MetricsAddr    *string  `yaml:"metricsAddr"`
	OTelEndpoint   *string  `yaml:"otelEndpoint"`
	OTelExporter   *string  `yaml:"otelExporter"`
	OTelSampling   *float64 `yaml:"otelSampling"`
}

// Load builds the effective configuration with precedence
// ENV > config file > defaults. path may be empty (no file).
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return AppConfig{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != nil {
		cfg.ListenAddr = fmt.Sprintf(":%d", *fc.Port)
	}
	if fc.DefaultCountry != nil {
		cfg.DefaultCountry = *fc.DefaultCountry
	}
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if fc.CacheTTL != nil {
		d, err := time.ParseDuration(*fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("parse cacheTTL %q: %w", *fc.CacheTTL, err)
		}
		cfg.CacheTTL = d
	}
	if fc.ChannelsURL != nil {
		cfg.ChannelsURL = *fc.ChannelsURL
	}
	if fc.StreamsURL != nil {
		cfg.StreamsURL = *fc.StreamsURL
	}
	if fc.RedisAddr != nil {
		cfg.RedisAddr = *fc.RedisAddr
	}
	if fc.HistoryDB != nil {
		cfg.HistoryPath = *fc.HistoryDB
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.MetricsAddr != nil {
		cfg.MetricsAddr = *fc.MetricsAddr
	}
	if fc.OTelEndpoint != nil {
		cfg.OTelEndpoint = *fc.OTelEndpoint
	}
	if fc.OTelExporter != nil {
		cfg.OTelExporter = *fc.OTelExporter
	}
	if fc.OTelSampling != nil {
		cfg.OTelSampling = *fc.OTelSampling
	}
	return nil
}
