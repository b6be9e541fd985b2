// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package recommend implements the recommendation request-serving
// pipeline.
//
// # Architecture
//
// A request flows through fixed stages:
//
//	cache lookup -> parallel recall -> weighted merge -> ranking ->
//	rerank -> personalize -> annotate -> truncate -> cache write
//
// Recall fans out over four independently pluggable strategies
// (collaborative filtering, content similarity, hot content, user
// history), each bounded by its own timeout; a failing strategy never
// fails the request. The merger folds the per-strategy lists into one
// deduplicated ranking with deterministic tie-breaking. The ranking
// model and the recall fan-out each run behind their own circuit
// breaker, and the pipeline as a whole behind a third, so a slow or
// failing dependency degrades the response instead of erroring it.
//
// # Degradation
//
// Recommend never returns a transient error. Each stage has its own
// fallback: recall substitutes the cached hot list (or the static
// defaults), ranking passes the merged order through unchanged, and
// the pipeline serves the last cached result even when stale. Degraded
// responses carry the fallback flag and name the stage in ExtraInfo.
//
// # Determinism
//
// Given identical store contents and breaker states, identical
// requests produce identical responses: merge, tie-breaking, diversity
// interleaving and experiment assignment are all pure functions of
// their inputs.
//
// Storage is intentionally abstracted behind BehaviorStore,
// ContentStore and Ranker; implementations are injected at the
// composition root.
package recommend
