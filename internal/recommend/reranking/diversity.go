// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package reranking

import (
	"context"
	"math"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// defaultCeiling is the default maximum share of the final list any
// single category may occupy.
const defaultCeiling = 0.3

// Diversity enforces a per-category ceiling on the final list.
//
// For a list of n items and ceiling c, no category may hold more than
// ceil(c*n) slots unless too few alternative-category items exist.
// Excess same-category items are pushed behind lower-scored items from
// under-represented categories; relative score order within each
// category is preserved.
type Diversity struct {
	ceiling float64
}

// Compile-time interface check
var _ recommend.Reranker = (*Diversity)(nil)

// NewDiversity creates the diversity reranker. ceiling is clamped to
// (0, 1]; zero or negative selects the default.
func NewDiversity(ceiling float64) *Diversity {
	if ceiling <= 0 {
		ceiling = defaultCeiling
	}
	if ceiling > 1 {
		ceiling = 1
	}
	return &Diversity{ceiling: ceiling}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// Rerank interleaves the list so that in the first n slots no category
// exceeds its cap. Deferred items keep their relative order and follow
// after every category's cap is honored, so nothing is dropped here;
// truncation happens later in the pipeline.
func (d *Diversity) Rerank(ctx context.Context, items []recommend.RankedItem, rc recommend.RerankContext) []recommend.RankedItem {
	if len(items) <= 1 {
		return items
	}

	n := len(items)
	if rc.Size > 0 && rc.Size < n {
		n = rc.Size
	}
	limit := int(math.Ceil(d.ceiling * float64(n)))
	if limit < 1 {
		limit = 1
	}

	result := make([]recommend.RankedItem, 0, len(items))
	deferred := make([]recommend.RankedItem, 0)
	counts := make(map[string]int)

	for i := range items {
		category := items[i].CategoryID
		if counts[category] < limit && len(result) < n {
			counts[category]++
			result = append(result, items[i])
			continue
		}
		deferred = append(deferred, items[i])
	}

	return append(result, deferred...)
}
