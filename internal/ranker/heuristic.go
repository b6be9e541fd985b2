// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package ranker

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// Heuristic is an embedded scorer used when no remote ranking service is
// configured. It blends the merge score with catalog popularity and
// freshness so the pipeline exercises a real reorder step.
type Heuristic struct {
	contents recommend.ContentStore

	// now is overridable for tests.
	now func() time.Time
}

// NewHeuristic creates the embedded ranker over the given catalog.
func NewHeuristic(contents recommend.ContentStore) *Heuristic {
	return &Heuristic{contents: contents, now: time.Now}
}

// Rank reorders candidates by a blend of merge score, popularity and
// freshness. Candidates missing from the catalog keep their merge score.
func (h *Heuristic) Rank(ctx context.Context, userID string, candidates []recommend.Candidate, scene string) ([]recommend.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ContentID
	}
	contents, err := h.contents.FindAllByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]recommend.Content, len(contents))
	for _, c := range contents {
		byID[c.ID] = c
	}

	maxMerge := 0.0
	for _, c := range candidates {
		if c.Score > maxMerge {
			maxMerge = c.Score
		}
	}
	if maxMerge == 0 {
		maxMerge = 1
	}

	now := h.now()
	out := make([]recommend.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		merge := out[i].Score / maxMerge
		score := 0.7 * merge
		if c, ok := byID[out[i].ContentID]; ok {
			score += 0.2 * clamp01(c.PopularityScore/100)
			score += 0.1 * freshness(now, c.PublishedAt)
		}
		out[i].Score = score
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ContentID < out[j].ContentID
	})
	return out, nil
}

// freshness decays from 1 toward 0 with a seven day half-life.
func freshness(now, publishedAt time.Time) float64 {
	if publishedAt.IsZero() || publishedAt.After(now) {
		return 1
	}
	days := now.Sub(publishedAt).Hours() / 24
	return math.Pow(0.5, days/7)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
