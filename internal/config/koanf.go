// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"/etc/feedrank/config.yaml",
	"/config/config.yaml",
	"./config.yaml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from three layers:
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, checking
// the CONFIG_PATH environment variable before the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when sourced from environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"warmup.content_types",
	"warmup.scenes",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars come in as strings but the config
// struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables are skipped so random environment noise
// cannot pollute the config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
//   - RECALL_TIMEOUT -> recall.timeout
//   - NATS_URL -> events.url
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":         "server.host",
		"http_port":         "server.port",
		"http_timeout":      "server.timeout",
		"environment":       "server.environment",
		"cors_origins":      "server.cors_origins",
		"rate_limit_reqs":   "server.rate_limit_reqs",
		"rate_limit_window": "server.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Cache mappings
		"cache_local_capacity":   "cache.local_capacity",
		"cache_badger_path":      "cache.badger_path",
		"cache_janitor_interval": "cache.janitor_interval",

		// Recall mappings
		"recall_timeout":                   "recall.timeout",
		"recall_collab_weight":             "recall.collaborative.weight",
		"recall_collab_min_common":         "recall.collaborative.min_common_items",
		"recall_collab_max_neighbors":      "recall.collaborative.max_neighbors",
		"recall_collab_max_candidates":     "recall.collaborative.max_candidates",
		"recall_similarity_weight":         "recall.content_similarity.weight",
		"recall_similarity_seeds":          "recall.content_similarity.seed_count",
		"recall_similarity_per_seed":       "recall.content_similarity.per_seed_limit",
		"recall_similarity_max_candidates": "recall.content_similarity.max_candidates",
		"recall_hot_weight":                "recall.hot.weight",
		"recall_hot_limit":                 "recall.hot.limit",
		"recall_hot_half_life_days":        "recall.hot.half_life_days",
		"recall_history_weight":            "recall.history.weight",
		"recall_history_max_categories":    "recall.history.max_categories",
		"recall_history_per_category":      "recall.history.per_category_limit",
		"recall_history_max_candidates":    "recall.history.max_candidates",

		// Breaker mappings
		"breaker_recall_error_threshold":   "breakers.recall.error_threshold",
		"breaker_recall_min_volume":        "breakers.recall.min_volume",
		"breaker_recall_sleep_window":      "breakers.recall.sleep_window",
		"breaker_recall_timeout":           "breakers.recall.timeout",
		"breaker_recall_max_concurrent":    "breakers.recall.max_concurrent",
		"breaker_ranking_error_threshold":  "breakers.ranking.error_threshold",
		"breaker_ranking_min_volume":       "breakers.ranking.min_volume",
		"breaker_ranking_sleep_window":     "breakers.ranking.sleep_window",
		"breaker_ranking_timeout":          "breakers.ranking.timeout",
		"breaker_ranking_max_concurrent":   "breakers.ranking.max_concurrent",
		"breaker_pipeline_error_threshold": "breakers.pipeline.error_threshold",
		"breaker_pipeline_min_volume":      "breakers.pipeline.min_volume",
		"breaker_pipeline_sleep_window":    "breakers.pipeline.sleep_window",
		"breaker_pipeline_timeout":         "breakers.pipeline.timeout",
		"breaker_pipeline_max_concurrent":  "breakers.pipeline.max_concurrent",

		// Pipeline mappings
		"pipeline_algorithm_version": "pipeline.algorithm_version",
		"pipeline_default_size":      "pipeline.default_size",
		"pipeline_max_size":          "pipeline.max_size",
		"pipeline_merge_factor":      "pipeline.merge_factor",

		// Rerank and personalization mappings
		"rerank_diversity_ceiling":     "rerank.diversity_ceiling",
		"personalize_treatment_boost":  "personalization.treatment_boost",
		"experiment_name":              "experiment.name",
		"experiment_treatment_percent": "experiment.treatment_percent",

		// Events mappings
		"nats_enabled":        "events.enabled",
		"nats_url":            "events.url",
		"nats_max_reconnects": "events.max_reconnects",
		"nats_reconnect_wait": "events.reconnect_wait",
		"nats_track_msg_id":   "events.track_msg_id",

		// Warmup mappings
		"warmup_content_types":   "warmup.content_types",
		"warmup_scenes":          "warmup.scenes",
		"warmup_rate_per_second": "warmup.rate_per_second",
		"warmup_burst":           "warmup.burst",
		"warmup_hot_list_size":   "warmup.hot_list_size",

		// Ranking and store mappings
		"ranking_url":     "ranking.url",
		"ranking_timeout": "ranking.timeout",
		"catalog_path":    "store.catalog_path",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}
