// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package reranking implements post-processing stages applied to ranked
// recommendation lists.
//
// Diversity caps the share any single category may take of the final
// list. Personalize reweights scores by request context (time of day,
// device, location) and by experiment variant. Both implement
// recommend.Reranker and run in the order they are registered on the
// pipeline.
package reranking
