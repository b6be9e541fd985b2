// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// Tiered composes the local and shared tiers. Reads fall through
// local -> shared and promote shared hits into the local tier; writes
// go through both. TTLs come from the key namespace.
//
// The shared tier is optional. With a nil shared tier every operation
// degrades to local-only, which keeps tests and single-process
// deployments simple.
type Tiered struct {
	local  *Local
	shared Shared
	logger zerolog.Logger
}

// NewTiered creates the two-tier cache. shared may be nil.
func NewTiered(local *Local, shared Shared, logger zerolog.Logger) *Tiered {
	return &Tiered{
		local:  local,
		shared: shared,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Get reads key through both tiers. A shared-tier hit is promoted into
// the local tier under the namespace TTL. Shared-tier failures are
// logged and treated as misses so an unhealthy store never fails a
// request.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if value, ok := t.local.Get(key); ok {
		metrics.CacheHits.WithLabelValues("local").Inc()
		return value, true
	}
	metrics.CacheMisses.WithLabelValues("local").Inc()

	if t.shared == nil {
		return nil, false
	}

	value, found, err := t.shared.Get(ctx, key)
	if err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("shared tier read failed")
		metrics.CacheMisses.WithLabelValues("shared").Inc()
		return nil, false
	}
	if !found {
		metrics.CacheMisses.WithLabelValues("shared").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("shared").Inc()
	t.local.Set(key, value, TTLFor(key))
	metrics.CachePromotions.Inc()
	return value, true
}

// GetStale reads key from the local tier only, including entries past
// their TTL. It backs the last resort of the pipeline's fallback chain.
func (t *Tiered) GetStale(key string) (value []byte, found, stale bool) {
	return t.local.GetStale(key)
}

// Set writes key to both tiers under its namespace TTL. Shared-tier
// failures are logged, not returned.
func (t *Tiered) Set(ctx context.Context, key string, value []byte) {
	ttl := TTLFor(key)
	t.local.Set(key, value, ttl)

	if t.shared == nil {
		return
	}
	if err := t.shared.Set(ctx, key, value, ttl); err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("shared tier write failed")
	}
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) {
	t.local.Delete(key)

	if t.shared == nil {
		return
	}
	if err := t.shared.Delete(ctx, key); err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("shared tier delete failed")
	}
}

// DeletePrefix removes every key under prefix from both tiers.
// Returns the number removed from the local tier.
func (t *Tiered) DeletePrefix(ctx context.Context, prefix string) int {
	removed := t.local.DeletePrefix(prefix)

	if t.shared != nil {
		if _, err := t.shared.DeletePrefix(ctx, prefix); err != nil {
			t.logger.Warn().Err(err).Str("prefix", prefix).Msg("shared tier prefix delete failed")
		}
	}
	return removed
}

// Local exposes the local tier for the janitor's expiry sweep.
func (t *Tiered) Local() *Local {
	return t.local
}

// Close closes the shared tier if one is configured.
func (t *Tiered) Close() error {
	if t.shared == nil {
		return nil
	}
	return t.shared.Close()
}
