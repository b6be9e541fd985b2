// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import "time"

// Config is the root configuration for the feedrank service.
// Values are layered: built-in defaults, then an optional YAML file,
// then environment variables (highest priority).
type Config struct {
	Server          ServerConfig          `koanf:"server"`
	Logging         LoggingConfig         `koanf:"logging"`
	Cache           CacheConfig           `koanf:"cache"`
	Recall          RecallConfig          `koanf:"recall"`
	Breakers        BreakersConfig        `koanf:"breakers"`
	Pipeline        PipelineConfig        `koanf:"pipeline"`
	Rerank          RerankConfig          `koanf:"rerank"`
	Personalization PersonalizationConfig `koanf:"personalization"`
	Experiment      ExperimentConfig      `koanf:"experiment"`
	Events          EventsConfig          `koanf:"events"`
	Warmup          WarmupConfig          `koanf:"warmup"`
	Ranking         RankingConfig         `koanf:"ranking"`
	Store           StoreConfig           `koanf:"store"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	Environment     string        `koanf:"environment"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds the two-tier cache settings. An empty BadgerPath
// runs the shared tier in memory, which is the right mode for tests
// and single-node deployments without a data volume.
type CacheConfig struct {
	LocalCapacity   int           `koanf:"local_capacity"`
	BadgerPath      string        `koanf:"badger_path"`
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// RecallConfig holds the multi-path recall settings. Timeout bounds
// each strategy individually, not the fan-out as a whole.
type RecallConfig struct {
	Timeout           time.Duration           `koanf:"timeout"`
	Collaborative     CollaborativeConfig     `koanf:"collaborative"`
	ContentSimilarity ContentSimilarityConfig `koanf:"content_similarity"`
	Hot               HotConfig               `koanf:"hot"`
	History           HistoryConfig           `koanf:"history"`
}

// CollaborativeConfig tunes user-based collaborative recall.
type CollaborativeConfig struct {
	Weight         float64 `koanf:"weight"`
	MinCommonItems int     `koanf:"min_common_items"`
	MaxNeighbors   int     `koanf:"max_neighbors"`
	MaxCandidates  int     `koanf:"max_candidates"`
}

// ContentSimilarityConfig tunes content-similarity recall.
type ContentSimilarityConfig struct {
	Weight        float64 `koanf:"weight"`
	SeedCount     int     `koanf:"seed_count"`
	PerSeedLimit  int     `koanf:"per_seed_limit"`
	MaxCandidates int     `koanf:"max_candidates"`
}

// HotConfig tunes popularity recall.
type HotConfig struct {
	Weight       float64 `koanf:"weight"`
	Limit        int     `koanf:"limit"`
	HalfLifeDays float64 `koanf:"half_life_days"`
}

// HistoryConfig tunes user-history recall.
type HistoryConfig struct {
	Weight           float64 `koanf:"weight"`
	MaxCategories    int     `koanf:"max_categories"`
	PerCategoryLimit int     `koanf:"per_category_limit"`
	MaxCandidates    int     `koanf:"max_candidates"`
}

// BreakerConfig tunes one circuit-breaker command.
type BreakerConfig struct {
	ErrorThreshold float64       `koanf:"error_threshold"`
	MinVolume      int           `koanf:"min_volume"`
	SleepWindow    time.Duration `koanf:"sleep_window"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxConcurrent  int           `koanf:"max_concurrent"`
}

// BreakersConfig holds the per-command breaker settings.
type BreakersConfig struct {
	Recall   BreakerConfig `koanf:"recall"`
	Ranking  BreakerConfig `koanf:"ranking"`
	Pipeline BreakerConfig `koanf:"pipeline"`
}

// PipelineConfig holds top-level pipeline settings.
type PipelineConfig struct {
	AlgorithmVersion string `koanf:"algorithm_version"`
	DefaultSize      int    `koanf:"default_size"`
	MaxSize          int    `koanf:"max_size"`
	MergeFactor      int    `koanf:"merge_factor"`
}

// RerankConfig holds diversity re-ranking settings.
type RerankConfig struct {
	DiversityCeiling float64 `koanf:"diversity_ceiling"`
}

// PersonalizationConfig holds contextual score boosts, keyed by
// context value then by content type. A missing entry means 1.0.
type PersonalizationConfig struct {
	TreatmentBoost float64                       `koanf:"treatment_boost"`
	TimeOfDay      map[string]map[string]float64 `koanf:"time_of_day"`
	Device         map[string]map[string]float64 `koanf:"device"`
	Location       map[string]map[string]float64 `koanf:"location"`
}

// ExperimentConfig holds A/B experiment assignment settings.
type ExperimentConfig struct {
	Name             string `koanf:"name"`
	TreatmentPercent int    `koanf:"treatment_percent"`
}

// EventsConfig holds behavior event publishing settings. When Enabled
// is false behavior ingestion still invalidates caches but events are
// delivered over an in-process channel instead of NATS JetStream.
type EventsConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
	TrackMsgID    bool          `koanf:"track_msg_id"`
}

// RankingConfig holds remote scoring model settings. An empty URL
// selects the embedded heuristic ranker.
type RankingConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// StoreConfig holds the embedded store settings. CatalogPath points to
// a JSON content catalog loaded at startup; empty starts with an empty
// catalog.
type StoreConfig struct {
	CatalogPath string `koanf:"catalog_path"`
}

// WarmupConfig holds cache warmup settings.
type WarmupConfig struct {
	ContentTypes  []string `koanf:"content_types"`
	Scenes        []string `koanf:"scenes"`
	RatePerSecond float64  `koanf:"rate_per_second"`
	Burst         int      `koanf:"burst"`
	HotListSize   int      `koanf:"hot_list_size"`
}

// defaultConfig returns the built-in defaults. Breaker numbers follow
// the tuning the service shipped with: recall tolerates more errors
// than ranking because partial recall still produces a usable feed.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			Environment:     "production",
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			LocalCapacity:   10000,
			BadgerPath:      "",
			JanitorInterval: 5 * time.Minute,
		},
		Recall: RecallConfig{
			Timeout: 2 * time.Second,
			Collaborative: CollaborativeConfig{
				Weight:         1.0,
				MinCommonItems: 2,
				MaxNeighbors:   20,
				MaxCandidates:  100,
			},
			ContentSimilarity: ContentSimilarityConfig{
				Weight:        0.8,
				SeedCount:     5,
				PerSeedLimit:  50,
				MaxCandidates: 100,
			},
			Hot: HotConfig{
				Weight:       0.5,
				Limit:        100,
				HalfLifeDays: 7,
			},
			History: HistoryConfig{
				Weight:           0.7,
				MaxCategories:    5,
				PerCategoryLimit: 30,
				MaxCandidates:    100,
			},
		},
		Breakers: BreakersConfig{
			Recall: BreakerConfig{
				ErrorThreshold: 0.60,
				MinVolume:      10,
				SleepWindow:    3 * time.Second,
				Timeout:        2 * time.Second,
				MaxConcurrent:  100,
			},
			Ranking: BreakerConfig{
				ErrorThreshold: 0.40,
				MinVolume:      15,
				SleepWindow:    4 * time.Second,
				Timeout:        1500 * time.Millisecond,
				MaxConcurrent:  100,
			},
			Pipeline: BreakerConfig{
				ErrorThreshold: 0.50,
				MinVolume:      20,
				SleepWindow:    5 * time.Second,
				Timeout:        5 * time.Second,
				MaxConcurrent:  500,
			},
		},
		Pipeline: PipelineConfig{
			AlgorithmVersion: "v1",
			DefaultSize:      10,
			MaxSize:          100,
			MergeFactor:      3,
		},
		Rerank: RerankConfig{
			DiversityCeiling: 0.3,
		},
		Personalization: PersonalizationConfig{
			TreatmentBoost: 1.1,
		},
		Experiment: ExperimentConfig{
			Name:             "",
			TreatmentPercent: 50,
		},
		Events: EventsConfig{
			Enabled:       false,
			URL:           "nats://localhost:4222",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			TrackMsgID:    true,
		},
		Warmup: WarmupConfig{
			ContentTypes:  []string{"mixed"},
			Scenes:        []string{"home"},
			RatePerSecond: 5,
			Burst:         1,
			HotListSize:   50,
		},
		Ranking: RankingConfig{
			URL:     "",
			Timeout: 1500 * time.Millisecond,
		},
		Store: StoreConfig{
			CatalogPath: "",
		},
	}
}
