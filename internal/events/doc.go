// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package events publishes user behavior events to the message bus.
//
// The service only produces events; downstream systems (feature
// pipelines, offline training) consume them elsewhere. Publishing is
// fire-and-forget from the API's perspective: a failed publish is
// logged and counted but never fails the originating request.
//
// The production publisher rides Watermill over NATS JetStream with
// reconnection handling and an optional circuit breaker. Tests and
// single-process deployments use the in-memory GoChannel publisher.
package events
