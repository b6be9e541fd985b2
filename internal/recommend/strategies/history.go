// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package strategies

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// UserHistory implements category-preference recall.
//
// The user's behavior over the lookback window yields a category
// preference distribution (share of behaviors per category). Categories
// are visited in descending preference order; each contributes its
// recently published items scored preference-share × item popularity.
type UserHistory struct {
	behaviors recommend.BehaviorStore
	contents  recommend.ContentStore
	weight    float64

	maxCategories    int
	perCategoryLimit int
	maxCandidates    int
}

// UserHistoryConfig contains configuration for user-history recall.
type UserHistoryConfig struct {
	// Weight is the static merge weight.
	Weight float64

	// MaxCategories caps how many preferred categories are visited.
	MaxCategories int

	// PerCategoryLimit bounds the published-item fetch per category.
	PerCategoryLimit int

	// MaxCandidates caps the returned candidate list.
	MaxCandidates int
}

// NewUserHistory creates a user-history recall strategy.
func NewUserHistory(behaviors recommend.BehaviorStore, contents recommend.ContentStore, cfg UserHistoryConfig) *UserHistory {
	if cfg.MaxCategories < 1 {
		cfg.MaxCategories = 5
	}
	if cfg.PerCategoryLimit < 1 {
		cfg.PerCategoryLimit = 30
	}
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = 100
	}
	if cfg.Weight <= 0 {
		cfg.Weight = 0.25
	}

	return &UserHistory{
		behaviors:        behaviors,
		contents:         contents,
		weight:           cfg.Weight,
		maxCategories:    cfg.MaxCategories,
		perCategoryLimit: cfg.PerCategoryLimit,
		maxCandidates:    cfg.MaxCandidates,
	}
}

// Name returns the strategy identifier.
func (s *UserHistory) Name() string {
	return "history"
}

// Weight returns the static merge weight.
func (s *UserHistory) Weight() float64 {
	return s.weight
}

// Recall generates candidates from the user's category preferences.
func (s *UserHistory) Recall(ctx context.Context, req recommend.Request) ([]recommend.Candidate, error) {
	since := time.Now().AddDate(0, 0, -behaviorWindowDays)
	prefs, err := s.behaviors.FindUserCategoryPreferences(ctx, req.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("find category preferences: %w", err)
	}
	if len(prefs) == 0 {
		return nil, nil
	}

	total := 0
	for _, p := range prefs {
		total += p.Count
	}
	if total == 0 {
		return nil, nil
	}

	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].Count != prefs[j].Count {
			return prefs[i].Count > prefs[j].Count
		}
		return prefs[i].CategoryID < prefs[j].CategoryID
	})
	if len(prefs) > s.maxCategories {
		prefs = prefs[:s.maxCategories]
	}

	scores := make(map[string]float64)
	for _, p := range prefs {
		share := float64(p.Count) / float64(total)
		items, err := s.contents.FindByCategoryAndStatus(ctx, p.CategoryID, recommend.StatusPublished, s.perCategoryLimit)
		if err != nil {
			// One unavailable category must not sink the strategy.
			continue
		}
		for _, c := range items {
			score := share * c.PopularityScore
			if score > scores[c.ID] {
				scores[c.ID] = score
			}
		}
	}

	return rankByScore(scores, s.maxCandidates), nil
}

// Ensure UserHistory implements the interface.
var _ recommend.Strategy = (*UserHistory)(nil)
