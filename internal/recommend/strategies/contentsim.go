// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package strategies

import (
	"context"
	"fmt"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// Similarity component weights: same category, tag overlap, same content
// type. They sum to 1 so the per-seed similarity stays in [0, 1].
const (
	simCategoryWeight = 0.4
	simTagWeight      = 0.4
	simTypeWeight     = 0.2
)

// ContentSimilarity implements content-based recall.
//
// The user's most recent positively-interacted items serve as seeds. For
// each seed the strategy fetches items sharing its category or tags and
// scores pairwise similarity; per-candidate similarity accumulates across
// all seeds, so items close to several seeds rank higher.
type ContentSimilarity struct {
	behaviors recommend.BehaviorStore
	contents  recommend.ContentStore
	weight    float64

	seedCount     int
	perSeedLimit  int
	maxCandidates int
}

// ContentSimilarityConfig contains configuration for content-based recall.
type ContentSimilarityConfig struct {
	// Weight is the static merge weight.
	Weight float64

	// SeedCount is how many recent positive items seed the search.
	SeedCount int

	// PerSeedLimit bounds the similar-content fetch per seed.
	PerSeedLimit int

	// MaxCandidates caps the returned candidate list.
	MaxCandidates int
}

// NewContentSimilarity creates a content-similarity recall strategy.
func NewContentSimilarity(behaviors recommend.BehaviorStore, contents recommend.ContentStore, cfg ContentSimilarityConfig) *ContentSimilarity {
	if cfg.SeedCount < 1 {
		cfg.SeedCount = 5
	}
	if cfg.PerSeedLimit < 1 {
		cfg.PerSeedLimit = 50
	}
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = 100
	}
	if cfg.Weight <= 0 {
		cfg.Weight = 0.25
	}

	return &ContentSimilarity{
		behaviors:     behaviors,
		contents:      contents,
		weight:        cfg.Weight,
		seedCount:     cfg.SeedCount,
		perSeedLimit:  cfg.PerSeedLimit,
		maxCandidates: cfg.MaxCandidates,
	}
}

// Name returns the strategy identifier.
func (s *ContentSimilarity) Name() string {
	return "content"
}

// Weight returns the static merge weight.
func (s *ContentSimilarity) Weight() float64 {
	return s.weight
}

// Recall generates candidates similar to the user's recent seeds.
func (s *ContentSimilarity) Recall(ctx context.Context, req recommend.Request) ([]recommend.Candidate, error) {
	prefs, err := s.behaviors.FindUserPreferredContents(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("find preferred contents: %w", err)
	}

	seedIDs := make([]string, 0, s.seedCount)
	seen := make(map[string]struct{}, s.seedCount)
	for _, b := range prefs {
		if !b.Type.IsPositive() {
			continue
		}
		if _, dup := seen[b.ContentID]; dup {
			continue
		}
		seen[b.ContentID] = struct{}{}
		seedIDs = append(seedIDs, b.ContentID)
		if len(seedIDs) == s.seedCount {
			break
		}
	}
	if len(seedIDs) == 0 {
		return nil, nil
	}

	seeds, err := s.contents.FindAllByID(ctx, seedIDs)
	if err != nil {
		return nil, fmt.Errorf("load seed metadata: %w", err)
	}

	scores := make(map[string]float64)
	for _, seed := range seeds {
		similar, err := s.contents.FindSimilarContents(ctx, seed.ID, seed.CategoryID, seed.Tags, s.perSeedLimit)
		if err != nil {
			// A failing seed lookup should not sink the whole strategy.
			continue
		}
		for _, cand := range similar {
			if _, isSeed := seen[cand.ID]; isSeed {
				continue
			}
			scores[cand.ID] += similarity(seed, cand)
		}
	}

	return rankByScore(scores, s.maxCandidates), nil
}

// similarity scores a seed/candidate pair on category, tags and type.
func similarity(seed, cand recommend.Content) float64 {
	score := simTagWeight * tagJaccard(seed.Tags, cand.Tags)
	if seed.CategoryID != "" && seed.CategoryID == cand.CategoryID {
		score += simCategoryWeight
	}
	if seed.ContentType != "" && seed.ContentType == cand.ContentType {
		score += simTypeWeight
	}
	return score
}

// Ensure ContentSimilarity implements the interface.
var _ recommend.Strategy = (*ContentSimilarity)(nil)
