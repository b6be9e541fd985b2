// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"time"
)

// BehaviorType classifies a user action on a piece of content.
type BehaviorType string

const (
	BehaviorView    BehaviorType = "view"
	BehaviorClick   BehaviorType = "click"
	BehaviorLike    BehaviorType = "like"
	BehaviorComment BehaviorType = "comment"
	BehaviorShare   BehaviorType = "share"
	BehaviorCollect BehaviorType = "collect"
)

// Weight returns the ordinal action weight used by collaborative recall.
// The scale expresses relative engagement strength, not a probability.
func (t BehaviorType) Weight() int {
	switch t {
	case BehaviorView:
		return 1
	case BehaviorClick:
		return 2
	case BehaviorLike:
		return 3
	case BehaviorComment:
		return 4
	case BehaviorShare:
		return 5
	case BehaviorCollect:
		return 6
	default:
		return 0
	}
}

// IsPositive reports whether the behavior is a strong positive signal
// (liked/shared/commented/collected), the kind used to seed similarity recall.
func (t BehaviorType) IsPositive() bool {
	switch t {
	case BehaviorLike, BehaviorShare, BehaviorComment, BehaviorCollect:
		return true
	default:
		return false
	}
}

// Behavior is a single user action on a content item.
type Behavior struct {
	UserID     string       `json:"user_id"`
	ContentID  string       `json:"content_id"`
	Type       BehaviorType `json:"type"`
	CategoryID string       `json:"category_id,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Content is the item metadata needed to recall, rank and annotate.
type Content struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ContentType     string    `json:"content_type"`
	CategoryID      string    `json:"category_id"`
	Tags            []string  `json:"tags,omitempty"`
	Status          string    `json:"status,omitempty"`
	PopularityScore float64   `json:"popularity_score,omitempty"`
	PublishedAt     time.Time `json:"published_at,omitempty"`
}

// ContentTypeMixed requests candidates across all content types.
const ContentTypeMixed = "mixed"

// StatusPublished is the only content status eligible for recall.
const StatusPublished = "published"

// Request is an immutable per-request description of what to recommend.
type Request struct {
	// UserID is the user to generate recommendations for.
	UserID string `json:"user_id"`

	// Size is the number of items to return.
	Size int `json:"size"`

	// ContentType filters candidates ("mixed" or a specific type).
	ContentType string `json:"content_type"`

	// Scene describes where the recommendations will be shown
	// (e.g. "home", "detail", "search").
	Scene string `json:"scene,omitempty"`

	// DeviceType is the requesting device (mobile, tablet, desktop, tv).
	DeviceType string `json:"device_type,omitempty"`

	// Location is a coarse location hint for context boosts.
	Location string `json:"location,omitempty"`

	// Extra carries freeform request parameters.
	Extra map[string]string `json:"extra,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Candidate is a content item produced by recall and scored during merge.
// The accumulated Score only grows as more recall outcomes are folded in.
type Candidate struct {
	// ContentID identifies the content item.
	ContentID string `json:"content_id"`

	// Sources lists the recall algorithms that produced this candidate,
	// in the order they were folded in.
	Sources []string `json:"sources,omitempty"`

	// SourceRanks records the zero-based position within each source list.
	SourceRanks map[string]int `json:"source_ranks,omitempty"`

	// Score is the accumulated merge score.
	Score float64 `json:"score"`
}

// RecallOutcome is the result of one strategy for one request.
type RecallOutcome struct {
	// Algorithm is the strategy name.
	Algorithm string

	// Weight is the static merge weight configured for the strategy.
	Weight float64

	// Candidates is the ordered candidate list (best first).
	Candidates []Candidate

	// Elapsed is how long the strategy took.
	Elapsed time.Duration

	// Err records why the strategy failed, nil on success.
	Err error
}

// OK reports whether the outcome carries usable candidates.
func (o RecallOutcome) OK() bool {
	return o.Err == nil
}

// RankedItem is a final, annotated recommendation entry.
type RankedItem struct {
	ContentID   string  `json:"content_id"`
	Title       string  `json:"title"`
	ContentType string  `json:"content_type"`
	CategoryID  string  `json:"category_id,omitempty"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason,omitempty"`
	Confidence  float64 `json:"confidence"`

	// Sources carries recall provenance through ranking for explanations.
	Sources []string `json:"-"`
}

// UserContext is derived fresh per request from the inbound parameters.
type UserContext struct {
	DeviceType string            `json:"device_type,omitempty"`
	Location   string            `json:"location,omitempty"`
	TimeOfDay  string            `json:"time_of_day"`
	DayOfWeek  time.Weekday      `json:"day_of_week"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Experiment variants.
const (
	VariantControl   = "control"
	VariantTreatment = "treatment"
)

// Assignment is a deterministic experiment-variant assignment for a user.
type Assignment struct {
	Experiment string `json:"experiment"`
	Variant    string `json:"variant"`
}

// Response is the recommendation result returned to callers.
type Response struct {
	// Items is the ordered recommendation list.
	Items []RankedItem `json:"items"`

	// Total is the number of items returned.
	Total int `json:"total"`

	// RequestID echoes the request identifier.
	RequestID string `json:"request_id"`

	// AlgorithmVersion identifies the pipeline version that produced the list.
	AlgorithmVersion string `json:"algorithm_version"`

	// FromCache indicates the response was served from the result cache.
	FromCache bool `json:"from_cache"`

	// Fallback indicates a degraded response produced by a fallback path.
	Fallback bool `json:"fallback"`

	// ExtraInfo carries diagnostic annotations (fallback stage, variant, ...).
	ExtraInfo map[string]string `json:"extra_info,omitempty"`
}
