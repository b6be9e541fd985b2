// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedrank/internal/cache"
)

// WarmupConfig tunes cache pre-population.
type WarmupConfig struct {
	// ContentTypes and Scenes span the combinations warmed per user.
	ContentTypes []string
	Scenes       []string

	// RatePerSecond throttles warmup work so it never crowds out
	// live traffic. Burst allows short spikes.
	RatePerSecond float64
	Burst         int

	// HotListSize is how many hot items to cache per content type.
	HotListSize int
}

func (c WarmupConfig) withDefaults() WarmupConfig {
	if len(c.ContentTypes) == 0 {
		c.ContentTypes = []string{ContentTypeMixed}
	}
	if len(c.Scenes) == 0 {
		c.Scenes = []string{SceneDefault}
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 5
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.HotListSize <= 0 {
		c.HotListSize = 50
	}
	return c
}

// WarmupCache pre-populates cache entries for a user: the hot list per
// content type (which also backs the recall fallback) and a
// recommendation result per content-type/scene combination. Work is
// rate limited; the call blocks until done or the context ends.
func (p *Pipeline) WarmupCache(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	start := time.Now()
	warmed := 0

	for _, contentType := range p.warmup.ContentTypes {
		if err := p.warmLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("warmup interrupted: %w", err)
		}
		if err := p.refreshHotList(ctx, contentType); err != nil {
			p.logger.Warn().Err(err).Str("content_type", contentType).Msg("hot list refresh failed")
		}

		for _, scene := range p.warmup.Scenes {
			if err := p.warmLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("warmup interrupted: %w", err)
			}
			if _, err := p.Recommend(ctx, Request{
				UserID:      userID,
				ContentType: contentType,
				Scene:       scene,
			}); err != nil {
				return fmt.Errorf("warm %s/%s: %w", contentType, scene, err)
			}
			warmed++
		}
	}

	p.logger.Info().
		Str("user_id", userID).
		Int("combinations", warmed).
		Dur("elapsed", time.Since(start)).
		Msg("cache warmup complete")
	return nil
}

// refreshHotList rebuilds the cached hot list for one content type.
func (p *Pipeline) refreshHotList(ctx context.Context, contentType string) error {
	contents, err := p.contents.FindHotContents(ctx, contentType, p.warmup.HotListSize)
	if err != nil {
		return fmt.Errorf("load hot contents: %w", err)
	}
	if len(contents) == 0 {
		return nil
	}

	raw, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("marshal hot list: %w", err)
	}
	p.store.Set(ctx, cache.HotKey(contentType), raw)
	return nil
}
