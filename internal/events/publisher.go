// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// Publisher sends behavior events to the bus.
type Publisher interface {
	// PublishBehavior publishes one event to its type-specific topic.
	PublishBehavior(ctx context.Context, event *BehaviorEvent) error

	// Close shuts the publisher down.
	Close() error
}

// NATSConfig configures the NATS-backed publisher.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string

	// MaxReconnects bounds reconnection attempts. Negative means
	// unlimited.
	MaxReconnects int

	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration

	// TrackMsgID enables JetStream deduplication by message ID.
	TrackMsgID bool
}

// NATSPublisher publishes behavior events over Watermill to NATS
// JetStream. Reconnection is handled by the NATS client; an optional
// circuit breaker sheds publishes while the broker is down.
type NATSPublisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	mu        sync.RWMutex
	closed    bool
	logger    watermill.LoggerAdapter
}

// Compile-time interface check
var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher creates the JetStream publisher.
func NewNATSPublisher(cfg NATSConfig, logger watermill.LoggerAdapter) (*NATSPublisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    cfg.TrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &NATSPublisher{
		publisher: pub,
		logger:    logger,
	}, nil
}

// SetCircuitBreaker configures the breaker guarding publish calls.
func (p *NATSPublisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.breaker = cb
}

// PublishBehavior publishes one event to its type-specific topic.
// The event ID doubles as Nats-Msg-Id for JetStream deduplication.
func (p *NATSPublisher) PublishBehavior(ctx context.Context, event *BehaviorEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	data, err := Serialize(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("behavior_type", event.BehaviorType)

	if p.breaker != nil {
		_, err = p.breaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(event.Topic(), msg)
		})
	} else {
		err = p.publisher.Publish(event.Topic(), msg)
	}

	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish behavior event %s: %w", event.EventID, err)
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}

// Close gracefully shuts down the publisher.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}
