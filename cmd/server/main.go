// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package main is the entry point for the Feedrank server.
//
// Feedrank serves personalized content recommendations over a REST API.
// Each request fans out to multiple recall strategies, merges the
// candidates with weighted reciprocal rank, scores them through a
// circuit-broken ranking gateway, applies diversity and context
// re-ranking, and caches the result in a two-tier cache. Transient
// failures resolve through a fallback chain; the recommend endpoint
// never returns a transient error.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered load (defaults, YAML file, env)
//  2. Logging: zerolog global logger from config
//  3. Store: embedded in-memory catalog and behavior log
//  4. Cache: local TTL tier plus BadgerDB shared tier
//  5. Recall: four strategies registered on the orchestrator
//  6. Resilience: per-command circuit breakers (recall, ranking, pipeline)
//  7. Events: behavior publisher (NATS JetStream or in-process channel)
//  8. Pipeline and HTTP API
//  9. Supervisor tree: cache janitor and HTTP server under suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, LOG_LEVEL, NATS_URL, ...)
//   - Config file (CONFIG_PATH, /etc/feedrank/config.yaml, ./config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
// Development, everything embedded:
//
//	export LOG_FORMAT=console
//	export CATALOG_PATH=./catalog.json
//	./feedrank
//
// Production with NATS event delivery and a remote scoring model:
//
//	export NATS_ENABLED=true
//	export NATS_URL=nats://nats:4222
//	export RANKING_URL=http://scorer:9000/v1/score
//	export CACHE_BADGER_PATH=/data/cache
//	./feedrank
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests (10s timeout),
// then closes the publisher and the cache tiers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/feedrank/internal/api"
	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/ranker"
	"github.com/tomtom215/feedrank/internal/recommend"
	"github.com/tomtom215/feedrank/internal/recommend/reranking"
	"github.com/tomtom215/feedrank/internal/recommend/strategies"
	"github.com/tomtom215/feedrank/internal/resilience"
	"github.com/tomtom215/feedrank/internal/store"
	"github.com/tomtom215/feedrank/internal/supervisor"
	"github.com/tomtom215/feedrank/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("algorithm_version", cfg.Pipeline.AlgorithmVersion).
		Msg("Starting Feedrank with supervisor tree")

	logger := logging.Logger()

	// Embedded store: content catalog plus behavior log
	mem := store.NewMemory()
	if cfg.Store.CatalogPath != "" {
		n, err := store.LoadCatalog(mem, cfg.Store.CatalogPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to load content catalog")
		}
		logging.Info().Int("contents", n).Str("path", cfg.Store.CatalogPath).Msg("Content catalog loaded")
	} else {
		logging.Info().Msg("No catalog configured, starting with an empty catalog (CATALOG_PATH)")
	}

	// Two-tier cache: local TTL tier plus Badger shared tier.
	// An empty badger path runs the shared tier in memory.
	shared, err := cache.NewBadgerCache(cfg.Cache.BadgerPath, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open shared cache")
	}
	tiered := cache.NewTiered(cache.NewLocal(cfg.Cache.LocalCapacity), shared, logger)
	defer func() {
		if err := tiered.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()
	if cfg.Cache.BadgerPath != "" {
		logging.Info().Str("path", cfg.Cache.BadgerPath).Msg("Shared cache tier on disk")
	} else {
		logging.Info().Msg("Shared cache tier in memory (CACHE_BADGER_PATH not set)")
	}

	// Recall orchestrator with all four strategies
	orchestrator := recommend.NewOrchestrator(cfg.Recall.Timeout, logger)
	orchestrator.Register(strategies.NewCollaborative(mem, strategies.CollaborativeConfig{
		Weight:         cfg.Recall.Collaborative.Weight,
		MinCommonItems: cfg.Recall.Collaborative.MinCommonItems,
		MaxNeighbors:   cfg.Recall.Collaborative.MaxNeighbors,
		MaxCandidates:  cfg.Recall.Collaborative.MaxCandidates,
	}))
	orchestrator.Register(strategies.NewContentSimilarity(mem, mem, strategies.ContentSimilarityConfig{
		Weight:        cfg.Recall.ContentSimilarity.Weight,
		SeedCount:     cfg.Recall.ContentSimilarity.SeedCount,
		PerSeedLimit:  cfg.Recall.ContentSimilarity.PerSeedLimit,
		MaxCandidates: cfg.Recall.ContentSimilarity.MaxCandidates,
	}))
	orchestrator.Register(strategies.NewHotContent(mem, strategies.HotContentConfig{
		Weight:       cfg.Recall.Hot.Weight,
		Limit:        cfg.Recall.Hot.Limit,
		HalfLifeDays: cfg.Recall.Hot.HalfLifeDays,
	}))
	orchestrator.Register(strategies.NewUserHistory(mem, mem, strategies.UserHistoryConfig{
		Weight:           cfg.Recall.History.Weight,
		MaxCategories:    cfg.Recall.History.MaxCategories,
		PerCategoryLimit: cfg.Recall.History.PerCategoryLimit,
		MaxCandidates:    cfg.Recall.History.MaxCandidates,
	}))

	// Circuit breakers for the three pipeline commands
	gateway := resilience.NewGateway(logger)
	registerBreaker(gateway, recommend.CommandRecall, cfg.Breakers.Recall)
	registerBreaker(gateway, recommend.CommandRanking, cfg.Breakers.Ranking)
	registerBreaker(gateway, recommend.CommandPipeline, cfg.Breakers.Pipeline)

	// Scoring model: remote over HTTP when configured, embedded otherwise
	var scorer recommend.Ranker
	if cfg.Ranking.URL != "" {
		scorer = ranker.NewHTTP(ranker.HTTPConfig{URL: cfg.Ranking.URL, Timeout: cfg.Ranking.Timeout})
		logging.Info().Str("url", cfg.Ranking.URL).Msg("Remote ranking model configured")
	} else {
		scorer = ranker.NewHeuristic(mem)
		logging.Info().Msg("Embedded heuristic ranker in use (RANKING_URL not set)")
	}

	// Behavior event publisher; every publish also feeds the embedded store
	var publisher events.Publisher
	if cfg.Events.Enabled {
		natsPub, err := events.NewNATSPublisher(events.NATSConfig{
			URL:           cfg.Events.URL,
			MaxReconnects: cfg.Events.MaxReconnects,
			ReconnectWait: cfg.Events.ReconnectWait,
			TrackMsgID:    cfg.Events.TrackMsgID,
		}, nil)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect behavior publisher to NATS")
		}
		publisher = natsPub
		logging.Info().Str("url", cfg.Events.URL).Msg("Behavior events published to NATS JetStream")
	} else {
		publisher = events.NewChannelPublisher(nil)
		logging.Info().Msg("Behavior events kept in-process (NATS_ENABLED=false)")
	}
	publisher = store.NewRecordingPublisher(mem, publisher)
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing behavior publisher")
		}
	}()

	// Editorial last-resort list: the catalog's current top items
	staticDefaults, err := mem.FindHotContents(context.Background(), recommend.ContentTypeMixed, cfg.Pipeline.DefaultSize)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to derive static default list")
	}

	experiments := recommend.NewExperiments(recommend.ExperimentConfig{
		Name:             cfg.Experiment.Name,
		TreatmentPercent: uint32(cfg.Experiment.TreatmentPercent),
	}, tiered)

	pipeline := recommend.NewPipeline(
		recommend.PipelineConfig{
			AlgorithmVersion: cfg.Pipeline.AlgorithmVersion,
			DefaultSize:      cfg.Pipeline.DefaultSize,
			MaxSize:          cfg.Pipeline.MaxSize,
			MergeFactor:      cfg.Pipeline.MergeFactor,
			StaticDefaults:   staticDefaults,
			Warmup: recommend.WarmupConfig{
				ContentTypes:  cfg.Warmup.ContentTypes,
				Scenes:        cfg.Warmup.Scenes,
				RatePerSecond: cfg.Warmup.RatePerSecond,
				Burst:         cfg.Warmup.Burst,
				HotListSize:   cfg.Warmup.HotListSize,
			},
		},
		orchestrator, mem, mem, scorer, gateway, tiered, experiments, logger,
	)
	pipeline.RegisterReranker(reranking.NewDiversity(cfg.Rerank.DiversityCeiling))
	pipeline.RegisterReranker(reranking.NewPersonalize(reranking.Boosts{
		TimeOfDay: cfg.Personalization.TimeOfDay,
		Device:    cfg.Personalization.Device,
		Location:  cfg.Personalization.Location,
	}, cfg.Personalization.TreatmentBoost))

	handler := api.NewHandler(pipeline, publisher, tiered, gateway)
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddCacheService(cache.NewJanitor(tiered, cfg.Cache.JanitorInterval, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// registerBreaker maps one breaker config block onto a gateway command.
func registerBreaker(gateway *resilience.Gateway, name string, b config.BreakerConfig) {
	gateway.Register(resilience.CommandConfig{
		Name:           name,
		ErrorThreshold: b.ErrorThreshold,
		MinVolume:      uint32(b.MinVolume),
		SleepWindow:    b.SleepWindow,
		Timeout:        b.Timeout,
		MaxConcurrent:  b.MaxConcurrent,
	})
}
