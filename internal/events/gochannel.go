// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// ChannelPublisher is an in-process Publisher on Watermill's GoChannel
// pubsub. It serves tests and deployments without an external broker.
type ChannelPublisher struct {
	pubsub *gochannel.GoChannel
}

// Compile-time interface check
var _ Publisher = (*ChannelPublisher)(nil)

// NewChannelPublisher creates the in-process publisher.
func NewChannelPublisher(logger watermill.LoggerAdapter) *ChannelPublisher {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &ChannelPublisher{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, logger),
	}
}

// PublishBehavior publishes one event to its type-specific topic.
func (p *ChannelPublisher) PublishBehavior(ctx context.Context, event *BehaviorEvent) error {
	data, err := Serialize(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("behavior_type", event.BehaviorType)

	if err := p.pubsub.Publish(event.Topic(), msg); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish behavior event %s: %w", event.EventID, err)
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Subscribe returns a channel of raw messages for a topic. Used by
// tests to observe published events.
func (p *ChannelPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

// Close shuts the pubsub down.
func (p *ChannelPublisher) Close() error {
	return p.pubsub.Close()
}
