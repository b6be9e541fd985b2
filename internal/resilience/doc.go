// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package resilience wraps externally-dependent calls with circuit
// breakers, execution timeouts, bulkheads and fallback dispatch.
//
// Each wrapped dependency gets an independent command key with its own
// breaker thresholds, so a failing ranking dependency cannot trip the
// recall breaker and vice versa. Breakers are built on sony/gobreaker;
// the gateway adds per-call timeouts (without cancelling the in-flight
// call), bounded concurrency per command, and the fallback chain.
//
// DETERMINISM NOTE: breaker recovery uses real time for its sleep
// window. Tests that exercise recovery use short windows and sleep
// past them rather than mocking the clock.
package resilience
