// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/recommend"
	"github.com/tomtom215/feedrank/internal/resilience"
	"github.com/tomtom215/feedrank/internal/store"
)

type apiStrategy struct {
	candidates []recommend.Candidate
	err        error
}

func (s *apiStrategy) Name() string    { return "hot" }
func (s *apiStrategy) Weight() float64 { return 1.0 }

func (s *apiStrategy) Recall(_ context.Context, _ recommend.Request) ([]recommend.Candidate, error) {
	return s.candidates, s.err
}

type apiRanker struct{}

func (r *apiRanker) Rank(_ context.Context, _ string, candidates []recommend.Candidate, _ string) ([]recommend.Candidate, error) {
	return candidates, nil
}

type apiFixture struct {
	server    http.Handler
	store     *cache.Tiered
	publisher *events.ChannelPublisher
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIFixtureWith(t, &apiStrategy{candidates: []recommend.Candidate{
		{ContentID: "a", Score: 2},
		{ContentID: "b", Score: 1},
	}})
}

func newAPIFixtureWith(t *testing.T, strategy recommend.Strategy) *apiFixture {
	t.Helper()
	logger := zerolog.Nop()

	mem := store.NewMemory()
	mem.UpsertContent(recommend.Content{ID: "a", Title: "Alpha", ContentType: "article", CategoryID: "tech", Status: recommend.StatusPublished, PopularityScore: 9, PublishedAt: time.Now().Add(-time.Hour)})
	mem.UpsertContent(recommend.Content{ID: "b", Title: "Beta", ContentType: "video", CategoryID: "tech", Status: recommend.StatusPublished, PopularityScore: 8, PublishedAt: time.Now().Add(-2 * time.Hour)})
	mem.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "a", Type: recommend.BehaviorLike})

	orchestrator := recommend.NewOrchestrator(time.Second, logger)
	orchestrator.Register(strategy)

	gateway := resilience.NewGateway(logger)
	for _, name := range []string{recommend.CommandRecall, recommend.CommandRanking, recommend.CommandPipeline} {
		gateway.Register(resilience.CommandConfig{
			Name:           name,
			ErrorThreshold: 0.5,
			MinVolume:      1000,
			SleepWindow:    time.Second,
			Timeout:        time.Second,
		})
	}

	store := cache.NewTiered(cache.NewLocal(100), nil, logger)
	experiments := recommend.NewExperiments(recommend.ExperimentConfig{}, nil)

	pipeline := recommend.NewPipeline(
		recommend.PipelineConfig{},
		orchestrator,
		mem,
		mem,
		&apiRanker{},
		gateway,
		store,
		experiments,
		logger,
	)

	publisher := events.NewChannelPublisher(watermill.NopLogger{})
	t.Cleanup(func() { _ = publisher.Close() })

	handler := NewHandler(pipeline, publisher, store, gateway)
	router := NewRouter(handler, NewMiddleware(&MiddlewareConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	}))

	return &apiFixture{
		server:    router.Setup(),
		store:     store,
		publisher: publisher,
	}
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Error    *APIError       `json:"error"`
	Metadata Metadata        `json:"metadata"`
}

func doJSON(t *testing.T, server http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope (%d): %v: %s", rec.Code, err, rec.Body.String())
	}
	return rec, env
}

func TestRecommendEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec, env := doJSON(t, f.server, http.MethodPost, "/api/v1/recommend", RecommendRequest{
		UserID: "u-1",
		Size:   10,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Errorf("envelope status = %q, want success", env.Status)
	}

	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	if resp.Items[0].ContentID != "a" {
		t.Errorf("first item = %q, want a", resp.Items[0].ContentID)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRecommendEndpointFallsBackWhenRecallDown(t *testing.T) {
	f := newAPIFixtureWith(t, &apiStrategy{err: errors.New("recall store unavailable")})
	ctx := context.Background()

	hot, err := json.Marshal([]recommend.Content{
		{ID: "a", Title: "Alpha", ContentType: "article", CategoryID: "tech", PopularityScore: 9},
	})
	if err != nil {
		t.Fatalf("marshal hot list: %v", err)
	}
	f.store.Set(ctx, cache.HotKey(recommend.ContentTypeMixed), hot)

	rec, env := doJSON(t, f.server, http.MethodPost, "/api/v1/recommend", RecommendRequest{
		UserID: "u-1",
		Size:   10,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Fallback {
		t.Error("expected fallback-tagged response")
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected fallback items from the hot list")
	}
	if resp.Items[0].ContentID != "a" {
		t.Errorf("first item = %q, want a", resp.Items[0].ContentID)
	}
}

func TestRecommendEndpointValidation(t *testing.T) {
	f := newAPIFixture(t)

	rec, env := doJSON(t, f.server, http.MethodPost, "/api/v1/recommend", RecommendRequest{
		Size: 10,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestRecommendEndpointBadJSON(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_JSON") {
		t.Errorf("expected INVALID_JSON code: %s", rec.Body.String())
	}
}

func TestExplainEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec, env := doJSON(t, f.server, http.MethodGet, "/api/v1/explain?user_id=u-1&content_id=a", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp ExplainResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Explanation == "" {
		t.Error("expected non-empty explanation")
	}
	if resp.ContentID != "a" {
		t.Errorf("content id = %q, want a", resp.ContentID)
	}
}

func TestExplainEndpointMissingParams(t *testing.T) {
	f := newAPIFixture(t)

	rec, env := doJSON(t, f.server, http.MethodGet, "/api/v1/explain?user_id=u-1", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestBehaviorEndpointPublishesAndInvalidates(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	// Seed a cached result for the user so invalidation is observable.
	key := cache.ResultKey("u-1", "mixed", "home")
	f.store.Set(ctx, key, []byte(`{}`))

	msgs, err := f.publisher.Subscribe(ctx, events.TopicPrefix+".like")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	rec, env := doJSON(t, f.server, http.MethodPost, "/api/v1/behaviors", BehaviorRequest{
		UserID:       "u-1",
		ContentID:    "a",
		BehaviorType: "like",
		Scene:        "home",
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	var accepted BehaviorAccepted
	if err := json.Unmarshal(env.Data, &accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if accepted.EventID == "" {
		t.Error("expected event id")
	}

	select {
	case msg := <-msgs:
		event, err := events.Deserialize(msg.Payload)
		if err != nil {
			t.Fatalf("deserialize: %v", err)
		}
		if event.UserID != "u-1" || event.ContentID != "a" {
			t.Errorf("unexpected event: %+v", event)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}

	if _, found := f.store.Get(ctx, key); found {
		t.Error("expected cached result to be invalidated")
	}
}

func TestBehaviorEndpointRejectsUnknownType(t *testing.T) {
	f := newAPIFixture(t)

	rec, env := doJSON(t, f.server, http.MethodPost, "/api/v1/behaviors", BehaviorRequest{
		UserID:       "u-1",
		ContentID:    "a",
		BehaviorType: "hover",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestWarmupEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := doJSON(t, f.server, http.MethodPost, "/api/v1/cache/warmup", WarmupRequest{UserID: "u-1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// Warmup should have populated the hot list.
	if _, found := f.store.Get(context.Background(), cache.HotKey("mixed")); !found {
		t.Error("expected hot list to be cached after warmup")
	}
}

func TestWarmupEndpointValidation(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := doJSON(t, f.server, http.MethodPost, "/api/v1/cache/warmup", WarmupRequest{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready", "/api/v1/health/"} {
		rec, _ := doJSON(t, f.server, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}

	_, env := doJSON(t, f.server, http.MethodGet, "/api/v1/health/", nil)
	var health HealthStatus
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.Breakers[recommend.CommandRecall] != "closed" {
		t.Errorf("recall breaker = %q, want closed", health.Breakers[recommend.CommandRecall])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "feedrank_") {
		t.Error("expected feedrank metrics in scrape output")
	}
}
