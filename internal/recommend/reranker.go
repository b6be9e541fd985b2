// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import "context"

// RerankContext carries the per-request signals rerankers adjust by.
type RerankContext struct {
	// User is the derived request context.
	User UserContext

	// Assignment is the user's experiment-variant assignment.
	Assignment Assignment

	// Size is the requested final list size. Rerankers may return more
	// items than Size; the pipeline truncates after the last stage.
	Size int
}

// Reranker modifies a ranked list for diversity or personalization.
// Implementations live in the reranking subpackage and are registered
// at the composition root; they run in registration order.
type Reranker interface {
	// Name returns the reranker identifier (e.g. "diversity").
	Name() string

	// Rerank reorders or reweights the already-scored items. The input
	// is sorted by score descending; the output must be too.
	Rerank(ctx context.Context, items []RankedItem, rc RerankContext) []RankedItem
}
