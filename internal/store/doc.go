// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package store provides the embedded in-memory implementation of the
// recommendation store interfaces: a content catalog (optionally seeded
// from a JSON file via LoadCatalog) and a behavior log fed by the event
// publishing path through RecordingPublisher.
//
// A deployment with an external persistence layer replaces this package
// at the composition root; the pipeline only sees the interfaces in
// internal/recommend.
package store
