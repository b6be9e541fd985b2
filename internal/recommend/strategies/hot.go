// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package strategies

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// HotContent implements popularity recall: the precomputed popularity
// top-N for the requested content type, decayed by content age so fresh
// items outrank equally-popular stale ones.
type HotContent struct {
	contents recommend.ContentStore
	weight   float64

	limit        int
	halfLifeDays float64

	// now is injected for tests; defaults to time.Now.
	now func() time.Time
}

// HotContentConfig contains configuration for hot-content recall.
type HotContentConfig struct {
	// Weight is the static merge weight.
	Weight float64

	// Limit is the top-N fetch size.
	Limit int

	// HalfLifeDays controls freshness decay: a content this many days old
	// scores half its popularity.
	HalfLifeDays float64
}

// NewHotContent creates a hot-content recall strategy.
func NewHotContent(contents recommend.ContentStore, cfg HotContentConfig) *HotContent {
	if cfg.Limit < 1 {
		cfg.Limit = 100
	}
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = 7
	}
	if cfg.Weight <= 0 {
		cfg.Weight = 0.2
	}

	return &HotContent{
		contents:     contents,
		weight:       cfg.Weight,
		limit:        cfg.Limit,
		halfLifeDays: cfg.HalfLifeDays,
		now:          time.Now,
	}
}

// Name returns the strategy identifier.
func (s *HotContent) Name() string {
	return "hot"
}

// Weight returns the static merge weight.
func (s *HotContent) Weight() float64 {
	return s.weight
}

// Recall returns the freshness-decayed popularity ranking for the
// requested content type.
func (s *HotContent) Recall(ctx context.Context, req recommend.Request) ([]recommend.Candidate, error) {
	hot, err := s.contents.FindHotContents(ctx, req.ContentType, s.limit)
	if err != nil {
		return nil, fmt.Errorf("find hot contents: %w", err)
	}
	if len(hot) == 0 {
		return nil, nil
	}

	now := s.now()
	type scored struct {
		id    string
		score float64
	}
	items := make([]scored, 0, len(hot))
	for _, c := range hot {
		items = append(items, scored{id: c.ID, score: c.PopularityScore * s.decay(now, c.PublishedAt)})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].id < items[j].id
	})

	out := make([]recommend.Candidate, len(items))
	for i, it := range items {
		out[i] = recommend.Candidate{ContentID: it.id}
	}
	return out, nil
}

// decay returns the exponential freshness factor for a publish time.
// Unknown publish times are treated as fresh.
func (s *HotContent) decay(now, publishedAt time.Time) float64 {
	if publishedAt.IsZero() || publishedAt.After(now) {
		return 1
	}
	ageDays := now.Sub(publishedAt).Hours() / 24
	return math.Exp2(-ageDays / s.halfLifeDays)
}

// Ensure HotContent implements the interface.
var _ recommend.Strategy = (*HotContent)(nil)
