// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package strategies implements the candidate-generation (recall) strategies
// for the recommendation pipeline.
//
// Each strategy implements the recommend.Strategy interface and is registered
// with the recall orchestrator, which runs all strategies in parallel with
// per-strategy timeouts and tolerates individual failures.
//
// # Strategies
//
//   - Collaborative: users with overlapping positive interactions
//   - ContentSimilarity: items similar to the user's recent seeds
//   - HotContent: popularity top-N with freshness decay
//   - UserHistory: category-preference weighted recent publications
//
// # Thread Safety
//
// Strategies hold no mutable state; all per-request state lives on the
// stack, so every strategy is safe for concurrent use.
package strategies
