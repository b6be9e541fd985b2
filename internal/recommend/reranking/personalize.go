// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package reranking

import (
	"context"
	"sort"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// Boosts maps context values to per-content-type score multipliers.
// The outer key is the observed context value (time-of-day bucket,
// device type, location), the inner key a content type. Missing keys
// mean no adjustment. Example: {"evening": {"video": 1.2}} lifts video
// items by 20% on evening requests.
type Boosts struct {
	TimeOfDay map[string]map[string]float64
	Device    map[string]map[string]float64
	Location  map[string]map[string]float64
}

// Personalize reweights a ranked list by request context and experiment
// variant, then restores score order.
//
// Two adjustments run in sequence. Context boosts multiply item scores
// by the configured factors for the request's time-of-day bucket,
// device type and location. Then, for users in the treatment variant,
// items outside the list's dominant category get an extra multiplier,
// which pushes the treatment group toward more varied lists.
type Personalize struct {
	boosts         Boosts
	treatmentBoost float64
}

// Compile-time interface check
var _ recommend.Reranker = (*Personalize)(nil)

// NewPersonalize creates the personalization reranker. treatmentBoost
// below 1 disables the variant adjustment.
func NewPersonalize(boosts Boosts, treatmentBoost float64) *Personalize {
	if treatmentBoost < 1 {
		treatmentBoost = 1
	}
	return &Personalize{boosts: boosts, treatmentBoost: treatmentBoost}
}

// Name returns the reranker identifier.
func (p *Personalize) Name() string {
	return "personalize"
}

// Rerank applies the context and variant multipliers and re-sorts by
// score descending with contentID as the deterministic tie-break.
func (p *Personalize) Rerank(ctx context.Context, items []recommend.RankedItem, rc recommend.RerankContext) []recommend.RankedItem {
	if len(items) == 0 {
		return items
	}

	out := make([]recommend.RankedItem, len(items))
	copy(out, items)

	for i := range out {
		out[i].Score *= p.contextMultiplier(out[i].ContentType, rc.User)
	}

	if rc.Assignment.Variant == recommend.VariantTreatment && p.treatmentBoost > 1 {
		dominant := dominantCategory(out)
		for i := range out {
			if out[i].CategoryID != dominant {
				out[i].Score *= p.treatmentBoost
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ContentID < out[j].ContentID
	})
	return out
}

func (p *Personalize) contextMultiplier(contentType string, user recommend.UserContext) float64 {
	m := 1.0
	if f, ok := p.boosts.TimeOfDay[user.TimeOfDay][contentType]; ok {
		m *= f
	}
	if f, ok := p.boosts.Device[user.DeviceType][contentType]; ok {
		m *= f
	}
	if f, ok := p.boosts.Location[user.Location][contentType]; ok {
		m *= f
	}
	return m
}

// dominantCategory returns the most frequent category in the list.
// Ties resolve to the lexicographically smallest category so the
// adjustment stays deterministic.
func dominantCategory(items []recommend.RankedItem) string {
	counts := make(map[string]int)
	for i := range items {
		counts[items[i].CategoryID]++
	}

	best, bestCount := "", -1
	for category, count := range counts {
		if count > bestCount || (count == bestCount && category < best) {
			best, bestCount = category, count
		}
	}
	return best
}
