// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package api provides the HTTP surface of the recommendation service.

Routing is built on go-chi with middleware from the chi ecosystem
(request IDs, real IP extraction, panic recovery, CORS, httprate
limiting). Every response uses one JSON envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "metadata": {"timestamp": ..., "query_time_ms": ..., "cached": ..., "fallback": ...},
	  "error": {"code": ..., "message": ...}
	}

# Endpoints

	POST /api/v1/recommend     - serve a personalized feed
	GET  /api/v1/explain       - explain one recommendation
	POST /api/v1/behaviors     - ingest a behavior event, invalidate user caches
	POST /api/v1/cache/warmup  - pre-populate caches for a user
	GET  /api/v1/health        - breaker states and cache detail
	GET  /api/v1/health/live   - process liveness
	GET  /api/v1/health/ready  - readiness (degraded breakers stay ready)
	GET  /metrics              - Prometheus scrape endpoint

Request payloads are validated with go-playground/validator before they
reach the pipeline; validation failures return the VALIDATION_ERROR code
with per-field detail.
*/
package api
