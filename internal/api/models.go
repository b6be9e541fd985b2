// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import "time"

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	// Timestamp is the server time when the response was generated.
	Timestamp time.Time `json:"timestamp"`

	// QueryTimeMS is the pipeline execution time in milliseconds.
	QueryTimeMS int64 `json:"query_time_ms,omitempty"`

	// Cached reports whether the result came from the result cache.
	Cached bool `json:"cached,omitempty"`

	// Fallback reports whether any degraded path served this response.
	Fallback bool `json:"fallback,omitempty"`
}

// APIError carries a machine-readable code plus a human message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendRequest is the POST /api/v1/recommend payload.
type RecommendRequest struct {
	UserID      string            `json:"user_id" validate:"required,max=128"`
	Size        int               `json:"size" validate:"min=0,max=100"`
	ContentType string            `json:"content_type" validate:"omitempty,oneof=article video live mixed"`
	Scene       string            `json:"scene" validate:"omitempty,max=64"`
	DeviceType  string            `json:"device_type" validate:"omitempty,max=64"`
	Location    string            `json:"location" validate:"omitempty,max=128"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// BehaviorRequest is the POST /api/v1/behaviors payload.
type BehaviorRequest struct {
	UserID       string `json:"user_id" validate:"required,max=128"`
	ContentID    string `json:"content_id" validate:"required,max=128"`
	BehaviorType string `json:"behavior_type" validate:"required,oneof=view click like comment share collect"`
	Scene        string `json:"scene" validate:"omitempty,max=64"`
	DeviceType   string `json:"device_type" validate:"omitempty,max=64"`
}

// WarmupRequest is the POST /api/v1/cache/warmup payload.
type WarmupRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

// ExplainResponse is the GET /api/v1/explain response body.
type ExplainResponse struct {
	UserID      string `json:"user_id"`
	ContentID   string `json:"content_id"`
	Explanation string `json:"explanation"`
}

// BehaviorAccepted is the POST /api/v1/behaviors response body.
type BehaviorAccepted struct {
	EventID string `json:"event_id"`
}

// HealthStatus is the GET /api/v1/health response body.
type HealthStatus struct {
	Status   string            `json:"status"`
	Breakers map[string]string `json:"breakers"`
	Cache    CacheHealth       `json:"cache"`
}

// CacheHealth summarizes the local cache tier.
type CacheHealth struct {
	Entries  int `json:"entries"`
	Capacity int `json:"capacity"`
}
