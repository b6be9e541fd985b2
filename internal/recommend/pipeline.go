// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/resilience"
)

// Gateway command names. The composition root registers a breaker for
// each before the pipeline serves traffic.
const (
	CommandRecall   = "recall"
	CommandRanking  = "ranking"
	CommandPipeline = "pipeline"
)

// SceneDefault is used when the request names no scene.
const SceneDefault = "home"

// ErrValidation marks client-facing request errors. It is the only
// error Recommend ever returns; every other failure resolves through
// the fallback chain.
var ErrValidation = errors.New("invalid request")

// ErrAllStrategiesFailed is recorded when the recall fan-out produced
// no outcome at all, which trips the recall fallback.
var ErrAllStrategiesFailed = errors.New("all recall strategies failed")

// PipelineConfig tunes the request-serving pipeline.
type PipelineConfig struct {
	// AlgorithmVersion is stamped on every response.
	AlgorithmVersion string

	// DefaultSize is used when the request does not name a size.
	DefaultSize int

	// MaxSize caps the requested size.
	MaxSize int

	// MergeFactor oversizes the merge target relative to the requested
	// size so filtering and diversity still have slack to work with.
	MergeFactor int

	// StaticDefaults is the editorially curated last-resort list served
	// when no hot list is cached and nothing else is available.
	StaticDefaults []Content

	// Warmup tunes WarmupCache.
	Warmup WarmupConfig
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.AlgorithmVersion == "" {
		c.AlgorithmVersion = "v1"
	}
	if c.DefaultSize <= 0 {
		c.DefaultSize = 10
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MergeFactor <= 0 {
		c.MergeFactor = 3
	}
	c.Warmup = c.Warmup.withDefaults()
	return c
}

// Pipeline composes recall, merge, ranking, reranking and caching into
// the request-serving path. It is safe for concurrent use.
//
// Per request: cache lookup, parallel recall, weighted merge, ranking
// through the gateway, reranking, annotation, truncation, cache write.
// Transient failures at any stage resolve through the fallback chain;
// only validation errors reach the caller.
type Pipeline struct {
	cfg          PipelineConfig
	orchestrator *Orchestrator
	contents     ContentStore
	behaviors    BehaviorStore
	ranker       Ranker
	gateway      *resilience.Gateway
	store        *cache.Tiered
	experiments  *Experiments
	rerankers    []Reranker
	warmup       WarmupConfig
	warmLimiter  *rate.Limiter
	logger       zerolog.Logger
}

// NewPipeline wires the pipeline. The gateway must have breakers
// registered for the recall, ranking and pipeline commands.
func NewPipeline(
	cfg PipelineConfig,
	orchestrator *Orchestrator,
	contents ContentStore,
	behaviors BehaviorStore,
	ranker Ranker,
	gateway *resilience.Gateway,
	store *cache.Tiered,
	experiments *Experiments,
	logger zerolog.Logger,
) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		cfg:          cfg,
		warmup:       cfg.Warmup,
		warmLimiter:  rate.NewLimiter(rate.Limit(cfg.Warmup.RatePerSecond), cfg.Warmup.Burst),
		orchestrator: orchestrator,
		contents:     contents,
		behaviors:    behaviors,
		ranker:       ranker,
		gateway:      gateway,
		store:        store,
		experiments:  experiments,
		logger:       logger.With().Str("component", "pipeline").Logger(),
	}
}

// RegisterReranker appends a reranker to the post-processing chain.
// Rerankers run in registration order.
func (p *Pipeline) RegisterReranker(r Reranker) {
	p.rerankers = append(p.rerankers, r)
	p.logger.Info().Str("reranker", r.Name()).Msg("reranker registered")
}

// Recommend serves one recommendation request. It never returns a
// transient error: degraded results come back flagged as fallback.
// The only error it returns wraps ErrValidation.
func (p *Pipeline) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := p.normalize(&req); err != nil {
		return nil, err
	}

	key := cache.ResultKey(req.UserID, req.ContentType, req.Scene)
	if resp := p.cachedResponse(ctx, key, req); resp != nil {
		metrics.PipelineRequests.WithLabelValues("cache").Inc()
		metrics.PipelineDuration.WithLabelValues(req.Scene).Observe(time.Since(start).Seconds())
		return resp, nil
	}

	result, degraded, err := p.gateway.Execute(ctx, CommandPipeline,
		func(ctx context.Context) (interface{}, error) {
			return p.run(ctx, req)
		},
		func(ctx context.Context, cause error) (interface{}, error) {
			return p.pipelineFallback(ctx, req, cause), nil
		})
	if err != nil {
		// Only reachable when the pipeline command was never
		// registered. Serve the static list rather than erroring.
		p.logger.Error().Err(err).Msg("pipeline gateway misconfigured")
		result = p.staticResponse(req)
		degraded = true
	}

	resp := result.(*Response)
	if degraded {
		resp.Fallback = true
	}

	outcome := "ok"
	if resp.Fallback {
		outcome = "fallback"
	} else {
		p.writeResult(ctx, key, resp)
	}
	metrics.PipelineRequests.WithLabelValues(outcome).Inc()
	metrics.PipelineDuration.WithLabelValues(req.Scene).Observe(time.Since(start).Seconds())

	p.logger.Debug().
		Str("user_id", req.UserID).
		Str("request_id", req.RequestID).
		Int("items", resp.Total).
		Bool("fallback", resp.Fallback).
		Dur("elapsed", time.Since(start)).
		Msg("request served")
	return resp, nil
}

// run executes the full pipeline body. Errors returned here count
// against the pipeline breaker and divert to the pipeline fallback.
func (p *Pipeline) run(ctx context.Context, req Request) (*Response, error) {
	uctx := DeriveUserContext(req, time.Now())
	assignment := p.experiments.Assign(ctx, req.UserID)

	outcomes, recallDegraded := p.recall(ctx, req)

	mergeStart := time.Now()
	merged := Merge(outcomes, req.Size*p.cfg.MergeFactor)
	metrics.StageDuration.WithLabelValues("merge").Observe(time.Since(mergeStart).Seconds())

	contents, err := p.metadataFor(ctx, merged)
	if err != nil {
		return nil, err
	}
	eligible := filterCandidates(merged, contents, req.ContentType)

	ranked, rankingDegraded := p.rank(ctx, req, eligible)

	items := buildItems(ranked, contents)
	rc := RerankContext{User: uctx, Assignment: assignment, Size: req.Size}
	for _, r := range p.rerankers {
		stageStart := time.Now()
		items = r.Rerank(ctx, items, rc)
		metrics.StageDuration.WithLabelValues(r.Name()).Observe(time.Since(stageStart).Seconds())
	}

	annotate(items, uctx)
	if len(items) > req.Size {
		items = items[:req.Size]
	}

	resp := &Response{
		Items:            items,
		Total:            len(items),
		RequestID:        req.RequestID,
		AlgorithmVersion: p.cfg.AlgorithmVersion,
		ExtraInfo: map[string]string{
			"variant":     assignment.Variant,
			"time_of_day": uctx.TimeOfDay,
		},
	}
	switch {
	case recallDegraded:
		resp.Fallback = true
		resp.ExtraInfo["fallback_stage"] = "recall"
	case rankingDegraded:
		resp.Fallback = true
		resp.ExtraInfo["fallback_stage"] = "ranking"
	}
	return resp, nil
}

// recall runs the fan-out through its breaker. An empty fan-out result
// counts as a failure; the fallback substitutes the hot list (or the
// static defaults) as a single synthetic outcome.
func (p *Pipeline) recall(ctx context.Context, req Request) ([]RecallOutcome, bool) {
	result, degraded, _ := p.gateway.Execute(ctx, CommandRecall,
		func(ctx context.Context) (interface{}, error) {
			outcomes := p.orchestrator.Recall(ctx, req)
			if len(outcomes) == 0 {
				return nil, ErrAllStrategiesFailed
			}
			return outcomes, nil
		},
		func(ctx context.Context, cause error) (interface{}, error) {
			metrics.FallbacksTotal.WithLabelValues("recall").Inc()
			contents, source := p.fallbackContents(ctx, req.ContentType)
			p.logger.Warn().Err(cause).Str("source", source).Msg("recall fallback engaged")
			return []RecallOutcome{outcomeFromContents(contents, source)}, nil
		})
	if degraded {
		return result.([]RecallOutcome), true
	}
	return result.([]RecallOutcome), false
}

// rank scores the merged candidates through the ranking breaker. The
// fallback passes the merged order through unchanged.
func (p *Pipeline) rank(ctx context.Context, req Request, candidates []Candidate) ([]Candidate, bool) {
	if len(candidates) == 0 {
		return candidates, false
	}

	stageStart := time.Now()
	result, degraded, _ := p.gateway.Execute(ctx, CommandRanking,
		func(ctx context.Context) (interface{}, error) {
			return p.ranker.Rank(ctx, req.UserID, candidates, req.Scene)
		},
		func(ctx context.Context, cause error) (interface{}, error) {
			metrics.FallbacksTotal.WithLabelValues("ranking").Inc()
			p.logger.Warn().Err(cause).Msg("ranking fallback engaged, merged order passes through")
			return candidates, nil
		})
	metrics.StageDuration.WithLabelValues("ranking").Observe(time.Since(stageStart).Seconds())
	return result.([]Candidate), degraded
}

// pipelineFallback is the last line of defense: stale cached result,
// then hot list, then static defaults. It cannot fail.
func (p *Pipeline) pipelineFallback(ctx context.Context, req Request, cause error) *Response {
	metrics.FallbacksTotal.WithLabelValues("pipeline").Inc()
	p.logger.Warn().Err(cause).Str("user_id", req.UserID).Msg("pipeline fallback engaged")

	key := cache.ResultKey(req.UserID, req.ContentType, req.Scene)
	if raw, found, _ := p.store.GetStale(key); found {
		var resp Response
		if err := json.Unmarshal(raw, &resp); err == nil {
			resp.RequestID = req.RequestID
			resp.FromCache = true
			resp.Fallback = true
			if resp.ExtraInfo == nil {
				resp.ExtraInfo = make(map[string]string)
			}
			resp.ExtraInfo["fallback_stage"] = "pipeline"
			if len(resp.Items) > req.Size {
				resp.Items = resp.Items[:req.Size]
				resp.Total = len(resp.Items)
			}
			return &resp
		}
	}

	return p.staticResponse(req)
}

// staticResponse builds a degraded response from the hot list or the
// configured static defaults.
func (p *Pipeline) staticResponse(req Request) *Response {
	contents, source := p.fallbackContents(context.Background(), req.ContentType)

	items := make([]RankedItem, 0, req.Size)
	var top float64
	if len(contents) > 0 {
		top = contents[0].PopularityScore
	}
	for _, c := range contents {
		if len(items) >= req.Size {
			break
		}
		confidence := 0.0
		if top > 0 {
			confidence = c.PopularityScore / top
		}
		items = append(items, RankedItem{
			ContentID:   c.ID,
			Title:       c.Title,
			ContentType: c.ContentType,
			CategoryID:  c.CategoryID,
			Score:       c.PopularityScore,
			Reason:      "Popular right now",
			Confidence:  confidence,
			Sources:     []string{source},
		})
	}

	return &Response{
		Items:            items,
		Total:            len(items),
		RequestID:        req.RequestID,
		AlgorithmVersion: p.cfg.AlgorithmVersion,
		Fallback:         true,
		ExtraInfo: map[string]string{
			"fallback_stage":  "pipeline",
			"fallback_source": source,
		},
	}
}

// fallbackContents returns the cached hot list for the content type,
// or the static defaults when none is cached.
func (p *Pipeline) fallbackContents(ctx context.Context, contentType string) ([]Content, string) {
	if raw, ok := p.store.Get(ctx, cache.HotKey(contentType)); ok {
		var contents []Content
		if err := json.Unmarshal(raw, &contents); err == nil && len(contents) > 0 {
			return contents, "hot-cache"
		}
	}
	return p.cfg.StaticDefaults, "static"
}

// cachedResponse returns the live cached result for key, or nil. The
// cache key does not encode the size, so a smaller request gets the
// cached list truncated.
func (p *Pipeline) cachedResponse(ctx context.Context, key string, req Request) *Response {
	raw, ok := p.store.Get(ctx, key)
	if !ok {
		return nil
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		p.store.Delete(ctx, key)
		return nil
	}
	resp.RequestID = req.RequestID
	resp.FromCache = true
	if len(resp.Items) > req.Size {
		resp.Items = resp.Items[:req.Size]
		resp.Total = len(resp.Items)
	}
	return &resp
}

func (p *Pipeline) writeResult(ctx context.Context, key string, resp *Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		p.logger.Error().Err(err).Msg("result marshal failed, skipping cache write")
		return
	}
	p.store.Set(ctx, key, raw)
}

// normalize validates the request and fills defaults in place.
func (p *Pipeline) normalize(req *Request) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if req.Size < 0 {
		return fmt.Errorf("%w: size must not be negative", ErrValidation)
	}
	if req.Size == 0 {
		req.Size = p.cfg.DefaultSize
	}
	if req.Size > p.cfg.MaxSize {
		req.Size = p.cfg.MaxSize
	}
	if req.ContentType == "" {
		req.ContentType = ContentTypeMixed
	}
	if req.Scene == "" {
		req.Scene = SceneDefault
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return nil
}

// metadataFor fetches content metadata for the merged candidates.
func (p *Pipeline) metadataFor(ctx context.Context, candidates []Candidate) (map[string]Content, error) {
	if len(candidates) == 0 {
		return map[string]Content{}, nil
	}

	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ContentID
	}

	contents, err := p.contents.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate metadata: %w", err)
	}

	byID := make(map[string]Content, len(contents))
	for i := range contents {
		byID[contents[i].ID] = contents[i]
	}
	return byID, nil
}

// filterCandidates drops candidates without metadata, unpublished ones
// and those outside the requested content type.
func filterCandidates(candidates []Candidate, contents map[string]Content, contentType string) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		c, ok := contents[candidates[i].ContentID]
		if !ok {
			continue
		}
		if c.Status != "" && c.Status != StatusPublished {
			continue
		}
		if contentType != ContentTypeMixed && c.ContentType != contentType {
			continue
		}
		out = append(out, candidates[i])
	}
	return out
}

// buildItems joins ranked candidates with their metadata.
func buildItems(candidates []Candidate, contents map[string]Content) []RankedItem {
	items := make([]RankedItem, 0, len(candidates))
	for i := range candidates {
		c := contents[candidates[i].ContentID]
		items = append(items, RankedItem{
			ContentID:   candidates[i].ContentID,
			Title:       c.Title,
			ContentType: c.ContentType,
			CategoryID:  c.CategoryID,
			Score:       candidates[i].Score,
			Sources:     candidates[i].Sources,
		})
	}
	return items
}

// outcomeFromContents wraps a fallback content list as a synthetic
// recall outcome so it flows through merge like any other source.
func outcomeFromContents(contents []Content, source string) RecallOutcome {
	candidates := make([]Candidate, 0, len(contents))
	for i := range contents {
		candidates = append(candidates, Candidate{
			ContentID:   contents[i].ID,
			Sources:     []string{source},
			SourceRanks: map[string]int{source: i},
		})
	}
	return RecallOutcome{
		Algorithm:  source,
		Weight:     1.0,
		Candidates: candidates,
	}
}
