// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package config provides centralized configuration management for Feedrank.

Configuration is layered with koanf: built-in defaults, then an optional
YAML config file, then environment variables. Environment variables win.

# Configuration Sources

  - Built-in defaults (always present)
  - YAML file: CONFIG_PATH, /etc/feedrank/config.yaml, /config/config.yaml,
    or ./config.yaml, first match wins
  - Environment variables (highest priority)

# Configuration Structure

  - ServerConfig: HTTP server settings (host, port, timeouts, rate limits)
  - LoggingConfig: zerolog level, format, and caller annotation
  - CacheConfig: local LRU capacity, Badger path, janitor interval
  - RecallConfig: per-strategy weights, limits, and the strategy timeout
  - BreakersConfig: circuit-breaker tuning per command
  - PipelineConfig: result sizing and the candidate merge factor
  - RerankConfig, PersonalizationConfig, ExperimentConfig: re-ranking
  - EventsConfig: NATS behavior event publishing
  - WarmupConfig: cache warmup content types, scenes, and rate limit

# Environment Variables

Selected variables (see envTransformFunc for the full mapping):

  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - CACHE_LOCAL_CAPACITY, CACHE_BADGER_PATH, CACHE_JANITOR_INTERVAL
  - RECALL_TIMEOUT, RECALL_COLLAB_WEIGHT, RECALL_HOT_WEIGHT, ...
  - BREAKER_RECALL_ERROR_THRESHOLD, BREAKER_RANKING_TIMEOUT, ...
  - PIPELINE_DEFAULT_SIZE, PIPELINE_MAX_SIZE, PIPELINE_MERGE_FACTOR
  - NATS_ENABLED, NATS_URL
*/
package config
