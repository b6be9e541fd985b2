// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package ranker provides the scoring implementations behind the
// pipeline's Ranker interface: HTTP for a remote scoring model and
// Heuristic as the embedded fallback when no ranking URL is configured.
// Either way the pipeline drives the call through the resilience
// gateway, so breaker and timeout behavior is identical.
package ranker
