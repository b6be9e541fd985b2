// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// Memory is an in-process implementation of the recommend store
// interfaces backed by maps. It holds the content catalog and the
// behavior log and is safe for concurrent use.
//
// Behaviors accumulate per user in insertion order; recall queries scan
// the log, which is fine for the catalog sizes this store targets.
type Memory struct {
	mu sync.RWMutex

	// contents is the catalog keyed by content ID.
	contents map[string]recommend.Content

	// behaviors is the per-user action log, oldest first.
	behaviors map[string][]recommend.Behavior

	// positives maps content ID to the set of users with a positive
	// action on it, used for neighbor lookup.
	positives map[string]map[string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		contents:  make(map[string]recommend.Content),
		behaviors: make(map[string][]recommend.Behavior),
		positives: make(map[string]map[string]struct{}),
	}
}

// UpsertContent adds or replaces a catalog entry.
func (m *Memory) UpsertContent(c recommend.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[c.ID] = c
}

// ContentCount returns the catalog size.
func (m *Memory) ContentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contents)
}

// RecordBehavior appends a user action to the log. The category is
// resolved from the catalog when the content is known.
func (m *Memory) RecordBehavior(b recommend.Behavior) {
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if b.CategoryID == "" {
		if c, ok := m.contents[b.ContentID]; ok {
			b.CategoryID = c.CategoryID
		}
	}
	m.behaviors[b.UserID] = append(m.behaviors[b.UserID], b)

	if b.Type.IsPositive() {
		users, ok := m.positives[b.ContentID]
		if !ok {
			users = make(map[string]struct{})
			m.positives[b.ContentID] = users
		}
		users[b.UserID] = struct{}{}
	}
}

// FindSimilarUsers returns users whose positive interactions overlap the
// target user's by at least minCommonItems, largest overlap first.
func (m *Memory) FindSimilarUsers(ctx context.Context, userID string, minCommonItems int) ([]recommend.SimilarUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Overlap counts distinct items, so repeat actions on the same
	// content (a like then a share) contribute once.
	counted := make(map[string]struct{})
	overlap := make(map[string]int)
	for _, b := range m.behaviors[userID] {
		if !b.Type.IsPositive() {
			continue
		}
		if _, dup := counted[b.ContentID]; dup {
			continue
		}
		counted[b.ContentID] = struct{}{}
		for other := range m.positives[b.ContentID] {
			if other != userID {
				overlap[other]++
			}
		}
	}

	out := make([]recommend.SimilarUser, 0, len(overlap))
	for id, n := range overlap {
		if n >= minCommonItems {
			out = append(out, recommend.SimilarUser{UserID: id, CommonItems: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommonItems != out[j].CommonItems {
			return out[i].CommonItems > out[j].CommonItems
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// FindUserPreferredContents returns the user's positive behaviors, most
// recent first.
func (m *Memory) FindUserPreferredContents(ctx context.Context, userID string) ([]recommend.Behavior, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []recommend.Behavior
	for _, b := range m.behaviors[userID] {
		if b.Type.IsPositive() {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// FindRecentViewedContentIDs returns content IDs the user interacted
// with since the given time, deduplicated.
func (m *Memory) FindRecentViewedContentIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, b := range m.behaviors[userID] {
		if b.Timestamp.Before(since) {
			continue
		}
		if _, dup := seen[b.ContentID]; dup {
			continue
		}
		seen[b.ContentID] = struct{}{}
		out = append(out, b.ContentID)
	}
	return out, nil
}

// FindUserCategoryPreferences returns per-category behavior counts since
// the given time, largest first.
func (m *Memory) FindUserCategoryPreferences(ctx context.Context, userID string, since time.Time) ([]recommend.CategoryCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, b := range m.behaviors[userID] {
		if b.Timestamp.Before(since) || b.CategoryID == "" {
			continue
		}
		counts[b.CategoryID]++
	}

	out := make([]recommend.CategoryCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, recommend.CategoryCount{CategoryID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

// FindByCategoryAndStatus returns contents in a category filtered by
// status, newest first, bounded by limit.
func (m *Memory) FindByCategoryAndStatus(ctx context.Context, categoryID, status string, limit int) ([]recommend.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []recommend.Content
	for _, c := range m.contents {
		if c.CategoryID == categoryID && c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, limit), nil
}

// FindSimilarContents returns published contents sharing the seed's
// category or at least one tag, excluding the seed itself.
func (m *Memory) FindSimilarContents(ctx context.Context, seedID, categoryID string, tags []string, limit int) ([]recommend.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []recommend.Content
	for _, c := range m.contents {
		if c.ID == seedID || c.Status != recommend.StatusPublished {
			continue
		}
		if c.CategoryID == categoryID && categoryID != "" {
			out = append(out, c)
			continue
		}
		for _, t := range c.Tags {
			if _, ok := tagSet[t]; ok {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PopularityScore != out[j].PopularityScore {
			return out[i].PopularityScore > out[j].PopularityScore
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, limit), nil
}

// FindHotContents returns the popularity top-N for a content type,
// "mixed" meaning all types.
func (m *Memory) FindHotContents(ctx context.Context, contentType string, limit int) ([]recommend.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []recommend.Content
	for _, c := range m.contents {
		if c.Status != recommend.StatusPublished {
			continue
		}
		if contentType != recommend.ContentTypeMixed && c.ContentType != contentType {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PopularityScore != out[j].PopularityScore {
			return out[i].PopularityScore > out[j].PopularityScore
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, limit), nil
}

// FindAllByID returns metadata for the given content IDs in input order.
// Unknown IDs are silently omitted.
func (m *Memory) FindAllByID(ctx context.Context, ids []string) ([]recommend.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recommend.Content, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.contents[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func truncate(contents []recommend.Content, limit int) []recommend.Content {
	if limit > 0 && len(contents) > limit {
		return contents[:limit]
	}
	return contents
}
