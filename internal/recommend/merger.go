// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"sort"
)

// Merge combines the candidate lists of multiple recall outcomes into one
// deduplicated ranking. It is pure and deterministic: identical inputs
// produce byte-identical output.
//
// For an outcome with weight w, the candidate at zero-based position p
// contributes w/(p+1) to its content's accumulated score; contributions
// for the same content across outcomes are summed. Final ordering is by
// accumulated score descending, ties broken by number of contributing
// algorithms descending, then content ID ascending. The result is
// truncated to targetSize.
func Merge(outcomes []RecallOutcome, targetSize int) []Candidate {
	if len(outcomes) == 0 || targetSize <= 0 {
		return []Candidate{}
	}

	merged := make(map[string]*Candidate)
	order := make([]string, 0)

	for _, outcome := range outcomes {
		if !outcome.OK() {
			continue
		}
		for pos, cand := range outcome.Candidates {
			contribution := outcome.Weight / float64(pos+1)

			c, ok := merged[cand.ContentID]
			if !ok {
				c = &Candidate{
					ContentID:   cand.ContentID,
					SourceRanks: make(map[string]int),
				}
				merged[cand.ContentID] = c
				order = append(order, cand.ContentID)
			}

			c.Score += contribution
			c.Sources = append(c.Sources, outcome.Algorithm)
			c.SourceRanks[outcome.Algorithm] = pos
		}
	}

	result := make([]Candidate, 0, len(order))
	for _, id := range order {
		result = append(result, *merged[id])
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		if len(result[i].Sources) != len(result[j].Sources) {
			return len(result[i].Sources) > len(result[j].Sources)
		}
		return result[i].ContentID < result[j].ContentID
	})

	if len(result) > targetSize {
		result = result[:targetSize]
	}

	return result
}
