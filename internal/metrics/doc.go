// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package metrics defines the Prometheus collectors for the recommendation
// pipeline. Collectors are registered via promauto at package init and
// exposed through the /metrics endpoint.
package metrics
