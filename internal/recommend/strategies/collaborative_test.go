// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package strategies

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/feedrank/internal/recommend"
)

func TestCollaborativeRanksByActionWeight(t *testing.T) {
	store := &mockBehaviorStore{
		similarUsers: []recommend.SimilarUser{
			{UserID: "n1", CommonItems: 5},
			{UserID: "n2", CommonItems: 3},
		},
		preferred: map[string][]recommend.Behavior{
			// share=5 beats like=3; comment=4 on c3.
			"n1": {
				{ContentID: "c1", Type: recommend.BehaviorLike},
				{ContentID: "c2", Type: recommend.BehaviorShare},
			},
			"n2": {
				{ContentID: "c1", Type: recommend.BehaviorLike},
				{ContentID: "c3", Type: recommend.BehaviorComment},
			},
		},
	}

	s := NewCollaborative(store, CollaborativeConfig{})
	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// c1: 3+3=6, c2: 5, c3: 4
	assertOrder(t, got, []string{"c1", "c2", "c3"})
}

func TestCollaborativeExcludesRecentlyViewed(t *testing.T) {
	store := &mockBehaviorStore{
		similarUsers: []recommend.SimilarUser{{UserID: "n1", CommonItems: 4}},
		preferred: map[string][]recommend.Behavior{
			"n1": {
				{ContentID: "seen", Type: recommend.BehaviorShare},
				{ContentID: "fresh", Type: recommend.BehaviorLike},
			},
		},
		recentViews: []string{"seen"},
	}

	s := NewCollaborative(store, CollaborativeConfig{})
	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertOrder(t, got, []string{"fresh"})
}

func TestCollaborativeIgnoresNonPositiveBehavior(t *testing.T) {
	store := &mockBehaviorStore{
		similarUsers: []recommend.SimilarUser{{UserID: "n1", CommonItems: 4}},
		preferred: map[string][]recommend.Behavior{
			"n1": {
				{ContentID: "viewed-only", Type: recommend.BehaviorView},
				{ContentID: "liked", Type: recommend.BehaviorLike},
			},
		},
	}

	s := NewCollaborative(store, CollaborativeConfig{})
	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertOrder(t, got, []string{"liked"})
}

func TestCollaborativeNoNeighbors(t *testing.T) {
	s := NewCollaborative(&mockBehaviorStore{}, CollaborativeConfig{})
	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %v", candidateIDs(got))
	}
}

func TestCollaborativePropagatesLookupError(t *testing.T) {
	store := &mockBehaviorStore{similarErr: errors.New("store down")}

	s := NewCollaborative(store, CollaborativeConfig{})
	if _, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestCollaborativeNeighborCap(t *testing.T) {
	store := &mockBehaviorStore{
		similarUsers: []recommend.SimilarUser{
			{UserID: "weak", CommonItems: 2},
			{UserID: "strong", CommonItems: 9},
		},
		preferred: map[string][]recommend.Behavior{
			"strong": {{ContentID: "a", Type: recommend.BehaviorLike}},
			"weak":   {{ContentID: "b", Type: recommend.BehaviorLike}},
		},
	}

	s := NewCollaborative(store, CollaborativeConfig{MaxNeighbors: 1})
	got, err := s.Recall(context.Background(), recommend.Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the strongest neighbor contributes.
	assertOrder(t, got, []string{"a"})
}
