// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package strategies

import (
	"sort"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// BehaviorWindow is the lookback covered by behavior-derived recall
// (view exclusion, category preferences).
const behaviorWindowDays = 30

// rankByScore converts a content→score map into an ordered candidate list,
// best first. Ties break on content ID ascending so strategy output is
// deterministic for identical inputs.
func rankByScore(scores map[string]float64, limit int) []recommend.Candidate {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]recommend.Candidate, len(ids))
	for i, id := range ids {
		out[i] = recommend.Candidate{ContentID: id}
	}
	return out
}

// tagJaccard computes Jaccard similarity between two tag lists.
func tagJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
