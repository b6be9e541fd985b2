// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/feedrank/internal/recommend"
)

func TestHotContentFreshnessDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	contents := &mockContentStore{
		hot: []recommend.Content{
			// Equal popularity: the fresh item must outrank the stale one.
			{ID: "stale", PopularityScore: 100, PublishedAt: now.AddDate(0, 0, -14)},
			{ID: "fresh", PopularityScore: 100, PublishedAt: now.AddDate(0, 0, -1)},
			// Popular enough to beat freshness decay.
			{ID: "blockbuster", PopularityScore: 1000, PublishedAt: now.AddDate(0, 0, -7)},
		},
	}

	s := NewHotContent(contents, HotContentConfig{HalfLifeDays: 7})
	s.now = func() time.Time { return now }

	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1", ContentType: recommend.ContentTypeMixed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// blockbuster: 1000*0.5=500, fresh: 100*2^(-1/7)≈90.6, stale: 100*0.25=25
	assertOrder(t, got, []string{"blockbuster", "fresh", "stale"})
}

func TestHotContentUnknownPublishTimeIsFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	contents := &mockContentStore{
		hot: []recommend.Content{
			{ID: "dated", PopularityScore: 100, PublishedAt: now.AddDate(0, 0, -30)},
			{ID: "undated", PopularityScore: 100},
		},
	}

	s := NewHotContent(contents, HotContentConfig{HalfLifeDays: 7})
	s.now = func() time.Time { return now }

	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertOrder(t, got, []string{"undated", "dated"})
}

func TestHotContentEmpty(t *testing.T) {
	s := NewHotContent(&mockContentStore{}, HotContentConfig{})
	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %v", candidateIDs(got))
	}
}
