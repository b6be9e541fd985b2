// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package config

import "fmt"

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the configuration for values that would make the
// service misbehave at runtime. It returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateRecall(); err != nil {
		return err
	}

	if err := c.validateBreakers(); err != nil {
		return err
	}

	if err := c.validatePipeline(); err != nil {
		return err
	}

	if err := c.validateRerank(); err != nil {
		return err
	}

	return c.validateRanking()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQS must not be negative, got %d", c.Server.RateLimitReqs)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.LocalCapacity < 1 {
		return fmt.Errorf("CACHE_LOCAL_CAPACITY must be positive, got %d", c.Cache.LocalCapacity)
	}
	if c.Cache.JanitorInterval <= 0 {
		return fmt.Errorf("CACHE_JANITOR_INTERVAL must be positive, got %s", c.Cache.JanitorInterval)
	}
	return nil
}

func (c *Config) validateRecall() error {
	if c.Recall.Timeout <= 0 {
		return fmt.Errorf("RECALL_TIMEOUT must be positive, got %s", c.Recall.Timeout)
	}
	weights := map[string]float64{
		"RECALL_COLLAB_WEIGHT":     c.Recall.Collaborative.Weight,
		"RECALL_SIMILARITY_WEIGHT": c.Recall.ContentSimilarity.Weight,
		"RECALL_HOT_WEIGHT":        c.Recall.Hot.Weight,
		"RECALL_HISTORY_WEIGHT":    c.Recall.History.Weight,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, w)
		}
	}
	return nil
}

func (c *Config) validateBreakers() error {
	commands := map[string]BreakerConfig{
		"recall":   c.Breakers.Recall,
		"ranking":  c.Breakers.Ranking,
		"pipeline": c.Breakers.Pipeline,
	}
	for name, b := range commands {
		if b.ErrorThreshold <= 0 || b.ErrorThreshold > 1 {
			return fmt.Errorf("breaker %s: error_threshold must be in (0, 1], got %g", name, b.ErrorThreshold)
		}
		if b.MinVolume < 1 {
			return fmt.Errorf("breaker %s: min_volume must be positive, got %d", name, b.MinVolume)
		}
		if b.SleepWindow <= 0 {
			return fmt.Errorf("breaker %s: sleep_window must be positive, got %s", name, b.SleepWindow)
		}
		if b.Timeout <= 0 {
			return fmt.Errorf("breaker %s: timeout must be positive, got %s", name, b.Timeout)
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.DefaultSize < 1 {
		return fmt.Errorf("PIPELINE_DEFAULT_SIZE must be positive, got %d", c.Pipeline.DefaultSize)
	}
	if c.Pipeline.MaxSize < c.Pipeline.DefaultSize {
		return fmt.Errorf("PIPELINE_MAX_SIZE (%d) must be at least PIPELINE_DEFAULT_SIZE (%d)",
			c.Pipeline.MaxSize, c.Pipeline.DefaultSize)
	}
	if c.Pipeline.MergeFactor < 1 {
		return fmt.Errorf("PIPELINE_MERGE_FACTOR must be positive, got %d", c.Pipeline.MergeFactor)
	}
	return nil
}

func (c *Config) validateRerank() error {
	if c.Rerank.DiversityCeiling <= 0 || c.Rerank.DiversityCeiling > 1 {
		return fmt.Errorf("RERANK_DIVERSITY_CEILING must be in (0, 1], got %g", c.Rerank.DiversityCeiling)
	}
	if c.Experiment.TreatmentPercent < 0 || c.Experiment.TreatmentPercent > 100 {
		return fmt.Errorf("EXPERIMENT_TREATMENT_PERCENT must be between 0 and 100, got %d", c.Experiment.TreatmentPercent)
	}
	return nil
}

func (c *Config) validateRanking() error {
	if c.Ranking.Timeout <= 0 {
		return fmt.Errorf("RANKING_TIMEOUT must be positive, got %s", c.Ranking.Timeout)
	}
	return nil
}
