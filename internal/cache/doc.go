// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package cache provides the two-tier cache backing the recommendation
// pipeline.
//
// The local tier is an in-process LRU with per-entry TTL and lazy
// expiration. It absorbs the bulk of repeat reads and additionally
// serves stale entries to the pipeline's degradation path when every
// upstream dependency is unavailable.
//
// The shared tier is a Badger store that survives process restarts and is
// visible to all replicas sharing the volume. Reads fall through
// local -> shared, and a shared hit is promoted into the local tier.
// Writes go through both tiers.
//
// Keys are namespaced (see keys.go); every namespace carries its own
// TTL so callers never pass durations around.
package cache
