// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// TopicPrefix is the subject prefix for behavior events. The behavior
// type is appended, e.g. "feedrank.behavior.click".
const TopicPrefix = "feedrank.behavior"

// BehaviorEvent is one recorded user action on a content item.
type BehaviorEvent struct {
	// EventID uniquely identifies the event, used for broker-side
	// deduplication.
	EventID string `json:"event_id"`

	// UserID is the acting user.
	UserID string `json:"user_id"`

	// ContentID is the content acted on.
	ContentID string `json:"content_id"`

	// BehaviorType is the action kind (view, click, like, comment,
	// share, collect).
	BehaviorType string `json:"behavior_type"`

	// Scene is the surface the action happened on (home, detail, ...).
	Scene string `json:"scene,omitempty"`

	// DeviceType is the client device kind.
	DeviceType string `json:"device_type,omitempty"`

	// OccurredAt is the client-reported action time.
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBehaviorEvent creates an event with a fresh ID and timestamp.
func NewBehaviorEvent(userID, contentID, behaviorType string) *BehaviorEvent {
	return &BehaviorEvent{
		EventID:      uuid.NewString(),
		UserID:       userID,
		ContentID:    contentID,
		BehaviorType: behaviorType,
		OccurredAt:   time.Now().UTC(),
	}
}

// Topic returns the subject the event is published to.
func (e *BehaviorEvent) Topic() string {
	return TopicPrefix + "." + e.BehaviorType
}

// Serialize encodes the event for the wire.
func Serialize(e *BehaviorEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal behavior event: %w", err)
	}
	return data, nil
}

// Deserialize decodes a wire payload back into an event.
func Deserialize(data []byte) (*BehaviorEvent, error) {
	var e BehaviorEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal behavior event: %w", err)
	}
	return &e, nil
}
