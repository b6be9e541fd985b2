// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package store

import (
	"context"

	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/recommend"
)

// RecordingPublisher decorates an event publisher so that every behavior
// published is also folded into the in-memory store. This keeps recall
// strategies fed without a separate consumer when the service runs with
// the embedded store.
type RecordingPublisher struct {
	store *Memory
	inner events.Publisher
}

// NewRecordingPublisher wraps inner so published behaviors are recorded
// into mem before being forwarded.
func NewRecordingPublisher(mem *Memory, inner events.Publisher) *RecordingPublisher {
	return &RecordingPublisher{store: mem, inner: inner}
}

// PublishBehavior records the behavior locally, then forwards it. The
// local write happens first so the store stays consistent even when the
// broker rejects the publish.
func (p *RecordingPublisher) PublishBehavior(ctx context.Context, ev *events.BehaviorEvent) error {
	p.store.RecordBehavior(recommend.Behavior{
		UserID:    ev.UserID,
		ContentID: ev.ContentID,
		Type:      recommend.BehaviorType(ev.BehaviorType),
		Timestamp: ev.OccurredAt,
	})
	return p.inner.PublishBehavior(ctx, ev)
}

// Close closes the wrapped publisher.
func (p *RecordingPublisher) Close() error {
	return p.inner.Close()
}
