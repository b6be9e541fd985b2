// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/recommend"
	"github.com/tomtom215/feedrank/internal/resilience"
)

// Handler serves the recommendation API.
type Handler struct {
	pipeline  *recommend.Pipeline
	publisher events.Publisher
	store     *cache.Tiered
	gateway   *resilience.Gateway
	logger    zerolog.Logger
}

// NewHandler wires the API handlers.
func NewHandler(
	pipeline *recommend.Pipeline,
	publisher events.Publisher,
	store *cache.Tiered,
	gateway *resilience.Gateway,
) *Handler {
	return &Handler{
		pipeline:  pipeline,
		publisher: publisher,
		store:     store,
		gateway:   gateway,
		logger:    logging.WithComponent("api"),
	}
}

// Recommend handles POST /api/v1/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	resp, err := h.pipeline.Recommend(r.Context(), recommend.Request{
		UserID:      req.UserID,
		Size:        req.Size,
		ContentType: req.ContentType,
		Scene:       req.Scene,
		DeviceType:  req.DeviceType,
		Location:    req.Location,
		Extra:       req.Extra,
		RequestID:   logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, recommend.ErrValidation) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build recommendations", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.FromCache,
			Fallback:    resp.Fallback,
		},
	})
}

// Explain handles GET /api/v1/explain?user_id=...&content_id=...
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	contentID := r.URL.Query().Get("content_id")
	if userID == "" || contentID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id and content_id are required", nil)
		return
	}

	explanation, err := h.pipeline.Explain(r.Context(), userID, contentID)
	if err != nil {
		if errors.Is(err, recommend.ErrValidation) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build explanation", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: ExplainResponse{
			UserID:      userID,
			ContentID:   contentID,
			Explanation: explanation,
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// IngestBehavior handles POST /api/v1/behaviors. It publishes the event
// and invalidates the user's cached recommendations so the next request
// reflects the new signal.
func (h *Handler) IngestBehavior(w http.ResponseWriter, r *http.Request) {
	var req BehaviorRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	event := events.NewBehaviorEvent(req.UserID, req.ContentID, req.BehaviorType)
	event.Scene = req.Scene
	event.DeviceType = req.DeviceType

	if err := h.publisher.PublishBehavior(r.Context(), event); err != nil {
		respondError(w, http.StatusServiceUnavailable, "PUBLISH_FAILED", "Failed to publish behavior event", err)
		return
	}

	h.invalidateUser(r, req.UserID)

	respondJSON(w, http.StatusAccepted, &APIResponse{
		Status:   "success",
		Data:     BehaviorAccepted{EventID: event.EventID},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// invalidateUser drops the user's cached results and profile.
func (h *Handler) invalidateUser(r *http.Request, userID string) {
	ctx := r.Context()
	removed := h.store.DeletePrefix(ctx, cache.UserResultPrefix(userID))
	h.store.Delete(ctx, cache.UserKey(userID))
	logging.Ctx(ctx).Debug().
		Str("user_id", sanitizeLogValue(userID)).
		Int("removed", removed).
		Msg("user caches invalidated")
}

// Warmup handles POST /api/v1/cache/warmup.
func (h *Handler) Warmup(w http.ResponseWriter, r *http.Request) {
	var req WarmupRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.pipeline.WarmupCache(r.Context(), req.UserID); err != nil {
		if errors.Is(err, recommend.ErrValidation) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "WARMUP_FAILED", "Cache warmup failed", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]string{"user_id": req.UserID},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// HealthLive handles GET /api/v1/health/live. It reports process
// liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// HealthReady handles GET /api/v1/health/ready. The service is ready as
// long as the cache tier is reachable; open breakers degrade but do not
// fail readiness because the fallback chain still serves requests.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     h.healthStatus(),
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Health handles GET /api/v1/health with breaker and cache detail.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     h.healthStatus(),
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

func (h *Handler) healthStatus() HealthStatus {
	breakers := map[string]string{
		recommend.CommandRecall:   h.gateway.State(recommend.CommandRecall),
		recommend.CommandRanking:  h.gateway.State(recommend.CommandRanking),
		recommend.CommandPipeline: h.gateway.State(recommend.CommandPipeline),
	}

	status := "healthy"
	for _, state := range breakers {
		if state == "open" {
			status = "degraded"
			break
		}
	}

	local := h.store.Local()
	return HealthStatus{
		Status:   status,
		Breakers: breakers,
		Cache: CacheHealth{
			Entries:  local.Len(),
			Capacity: local.Capacity(),
		},
	}
}
