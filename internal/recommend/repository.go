// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"time"
)

// Note: This package has no dependency on a concrete storage layer.
// The store interfaces below are implemented by the persistence layer
// and injected at the composition root.

// SimilarUser pairs a neighbor user with the number of positively
// interacted items shared with the target user.
type SimilarUser struct {
	UserID      string
	CommonItems int
}

// CategoryCount is a user's behavior count within one category.
type CategoryCount struct {
	CategoryID string
	Count      int
}

// BehaviorStore provides user-behavior lookups for recall strategies.
type BehaviorStore interface {
	// FindSimilarUsers returns users whose positive interactions overlap
	// the target user's by at least minCommonItems, with the overlap size.
	FindSimilarUsers(ctx context.Context, userID string, minCommonItems int) ([]SimilarUser, error)

	// FindUserPreferredContents returns the user's positive behaviors
	// (liked/shared/commented/collected), most recent first.
	FindUserPreferredContents(ctx context.Context, userID string) ([]Behavior, error)

	// FindRecentViewedContentIDs returns content the user viewed since
	// the given time, used to exclude already-seen items.
	FindRecentViewedContentIDs(ctx context.Context, userID string, since time.Time) ([]string, error)

	// FindUserCategoryPreferences returns per-category behavior counts
	// since the given time.
	FindUserCategoryPreferences(ctx context.Context, userID string, since time.Time) ([]CategoryCount, error)
}

// ContentStore provides content metadata lookups for recall and annotation.
type ContentStore interface {
	// FindByCategoryAndStatus returns contents in a category filtered by
	// status, newest first, bounded by limit.
	FindByCategoryAndStatus(ctx context.Context, categoryID, status string, limit int) ([]Content, error)

	// FindSimilarContents returns published contents sharing the seed's
	// category or at least one tag, excluding the seed itself.
	FindSimilarContents(ctx context.Context, seedID, categoryID string, tags []string, limit int) ([]Content, error)

	// FindHotContents returns the precomputed popularity top-N for a
	// content type ("mixed" for all types).
	FindHotContents(ctx context.Context, contentType string, limit int) ([]Content, error)

	// FindAllByID returns metadata for the given content IDs. Unknown IDs
	// are silently omitted.
	FindAllByID(ctx context.Context, ids []string) ([]Content, error)
}

// Ranker is the remote scoring model. It returns the candidates reordered
// by model score; the call is always made through the resilience gateway.
type Ranker interface {
	Rank(ctx context.Context, userID string, candidates []Candidate, scene string) ([]Candidate, error)
}
