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

// Collaborative implements user-based collaborative filtering recall.
//
// It finds users whose positive interactions overlap the target user's by
// at least a minimum common-item threshold, then ranks the items those
// neighbors liked, shared or commented on by accumulated action weight
// (view=1, click=2, like=3, comment=4, share=5, collect=6). Items the
// target user viewed within the lookback window are excluded.
type Collaborative struct {
	behaviors recommend.BehaviorStore
	weight    float64

	minCommonItems int
	maxNeighbors   int
	maxCandidates  int
}

// CollaborativeConfig contains configuration for collaborative recall.
type CollaborativeConfig struct {
	// Weight is the static merge weight.
	Weight float64

	// MinCommonItems is the minimum interaction overlap for a neighbor.
	MinCommonItems int

	// MaxNeighbors caps how many neighbors contribute candidates.
	MaxNeighbors int

	// MaxCandidates caps the returned candidate list.
	MaxCandidates int
}

// NewCollaborative creates a collaborative-filtering recall strategy.
func NewCollaborative(behaviors recommend.BehaviorStore, cfg CollaborativeConfig) *Collaborative {
	if cfg.MinCommonItems < 1 {
		cfg.MinCommonItems = 2
	}
	if cfg.MaxNeighbors < 1 {
		cfg.MaxNeighbors = 20
	}
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = 100
	}
	if cfg.Weight <= 0 {
		cfg.Weight = 0.3
	}

	return &Collaborative{
		behaviors:      behaviors,
		weight:         cfg.Weight,
		minCommonItems: cfg.MinCommonItems,
		maxNeighbors:   cfg.MaxNeighbors,
		maxCandidates:  cfg.MaxCandidates,
	}
}

// Name returns the strategy identifier.
func (s *Collaborative) Name() string {
	return "collaborative"
}

// Weight returns the static merge weight.
func (s *Collaborative) Weight() float64 {
	return s.weight
}

// Recall generates candidates from similar users' positive behavior.
func (s *Collaborative) Recall(ctx context.Context, req recommend.Request) ([]recommend.Candidate, error) {
	neighbors, err := s.behaviors.FindSimilarUsers(ctx, req.UserID, s.minCommonItems)
	if err != nil {
		return nil, fmt.Errorf("find similar users: %w", err)
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].CommonItems != neighbors[j].CommonItems {
			return neighbors[i].CommonItems > neighbors[j].CommonItems
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	if len(neighbors) > s.maxNeighbors {
		neighbors = neighbors[:s.maxNeighbors]
	}

	since := time.Now().AddDate(0, 0, -behaviorWindowDays)
	viewedIDs, err := s.behaviors.FindRecentViewedContentIDs(ctx, req.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("find recent views: %w", err)
	}
	viewed := make(map[string]struct{}, len(viewedIDs))
	for _, id := range viewedIDs {
		viewed[id] = struct{}{}
	}

	scores := make(map[string]float64)
	for _, n := range neighbors {
		prefs, err := s.behaviors.FindUserPreferredContents(ctx, n.UserID)
		if err != nil {
			// A single unavailable neighbor must not sink the strategy.
			continue
		}
		for _, b := range prefs {
			if !b.Type.IsPositive() {
				continue
			}
			if _, seen := viewed[b.ContentID]; seen {
				continue
			}
			scores[b.ContentID] += float64(b.Type.Weight())
		}
	}

	return rankByScore(scores, s.maxCandidates), nil
}

// Ensure Collaborative implements the interface.
var _ recommend.Strategy = (*Collaborative)(nil)
