// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/feedrank/internal/events"
	"github.com/tomtom215/feedrank/internal/recommend"
)

func seedCatalog(m *Memory) {
	now := time.Now().UTC()
	m.UpsertContent(recommend.Content{
		ID: "c-1", Title: "Go Generics", ContentType: "article", CategoryID: "tech",
		Tags: []string{"go", "generics"}, Status: recommend.StatusPublished,
		PopularityScore: 90, PublishedAt: now.Add(-time.Hour),
	})
	m.UpsertContent(recommend.Content{
		ID: "c-2", Title: "Sourdough Basics", ContentType: "video", CategoryID: "food",
		Tags: []string{"baking"}, Status: recommend.StatusPublished,
		PopularityScore: 70, PublishedAt: now.Add(-2 * time.Hour),
	})
	m.UpsertContent(recommend.Content{
		ID: "c-3", Title: "Channels Deep Dive", ContentType: "article", CategoryID: "tech",
		Tags: []string{"go", "concurrency"}, Status: recommend.StatusPublished,
		PopularityScore: 80, PublishedAt: now.Add(-30 * time.Minute),
	})
	m.UpsertContent(recommend.Content{
		ID: "c-4", Title: "Draft Post", ContentType: "article", CategoryID: "tech",
		Status: "draft", PopularityScore: 99, PublishedAt: now,
	})
}

func TestMemoryFindSimilarUsers(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)

	// u-1 and u-2 share two positive items, u-3 shares one.
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-1", Type: recommend.BehaviorLike})
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-3", Type: recommend.BehaviorShare})
	m.RecordBehavior(recommend.Behavior{UserID: "u-2", ContentID: "c-1", Type: recommend.BehaviorCollect})
	m.RecordBehavior(recommend.Behavior{UserID: "u-2", ContentID: "c-3", Type: recommend.BehaviorLike})
	m.RecordBehavior(recommend.Behavior{UserID: "u-3", ContentID: "c-1", Type: recommend.BehaviorLike})
	// Views are not positive signals and must not create neighbors.
	m.RecordBehavior(recommend.Behavior{UserID: "u-4", ContentID: "c-1", Type: recommend.BehaviorView})

	got, err := m.FindSimilarUsers(context.Background(), "u-1", 1)
	if err != nil {
		t.Fatalf("FindSimilarUsers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d: %+v", len(got), got)
	}
	if got[0].UserID != "u-2" || got[0].CommonItems != 2 {
		t.Errorf("expected u-2 with 2 common items first, got %+v", got[0])
	}
	if got[1].UserID != "u-3" || got[1].CommonItems != 1 {
		t.Errorf("expected u-3 with 1 common item second, got %+v", got[1])
	}

	got, err = m.FindSimilarUsers(context.Background(), "u-1", 2)
	if err != nil {
		t.Fatalf("FindSimilarUsers: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u-2" {
		t.Errorf("minCommonItems=2 should keep only u-2, got %+v", got)
	}
}

func TestMemoryFindSimilarUsersCountsDistinctItems(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)

	// u-1 both likes and shares c-1; the repeat action on the same item
	// must not inflate the overlap.
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-1", Type: recommend.BehaviorLike})
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-1", Type: recommend.BehaviorShare})
	m.RecordBehavior(recommend.Behavior{UserID: "u-2", ContentID: "c-1", Type: recommend.BehaviorLike})

	got, err := m.FindSimilarUsers(context.Background(), "u-1", 1)
	if err != nil {
		t.Fatalf("FindSimilarUsers: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u-2" || got[0].CommonItems != 1 {
		t.Fatalf("expected u-2 with 1 common item, got %+v", got)
	}

	got, err = m.FindSimilarUsers(context.Background(), "u-1", 2)
	if err != nil {
		t.Fatalf("FindSimilarUsers: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("minCommonItems=2 should exclude a single shared item, got %+v", got)
	}
}

func TestMemoryFindUserPreferredContents(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)

	old := time.Now().Add(-time.Hour)
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-2", Type: recommend.BehaviorLike, Timestamp: old})
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-1", Type: recommend.BehaviorShare, Timestamp: time.Now()})
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-3", Type: recommend.BehaviorView})

	got, err := m.FindUserPreferredContents(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindUserPreferredContents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 positive behaviors, got %d", len(got))
	}
	if got[0].ContentID != "c-1" {
		t.Errorf("expected most recent first, got %s", got[0].ContentID)
	}
	if got[0].CategoryID != "tech" {
		t.Errorf("category should be resolved from the catalog, got %q", got[0].CategoryID)
	}
}

func TestMemoryFindRecentViewedContentIDs(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)

	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-1", Type: recommend.BehaviorView, Timestamp: time.Now().Add(-48 * time.Hour)})
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-2", Type: recommend.BehaviorView})
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-2", Type: recommend.BehaviorClick})

	got, err := m.FindRecentViewedContentIDs(context.Background(), "u-1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("FindRecentViewedContentIDs: %v", err)
	}
	if len(got) != 1 || got[0] != "c-2" {
		t.Errorf("expected deduplicated [c-2], got %v", got)
	}
}

func TestMemoryFindUserCategoryPreferences(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)

	for i := 0; i < 3; i++ {
		m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-1", Type: recommend.BehaviorView})
	}
	m.RecordBehavior(recommend.Behavior{UserID: "u-1", ContentID: "c-2", Type: recommend.BehaviorView})

	got, err := m.FindUserCategoryPreferences(context.Background(), "u-1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("FindUserCategoryPreferences: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].CategoryID != "tech" || got[0].Count != 3 {
		t.Errorf("expected tech:3 first, got %+v", got[0])
	}
}

func TestMemoryContentQueries(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)
	ctx := context.Background()

	t.Run("by category and status", func(t *testing.T) {
		got, err := m.FindByCategoryAndStatus(ctx, "tech", recommend.StatusPublished, 10)
		if err != nil {
			t.Fatalf("FindByCategoryAndStatus: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 published tech items, got %d", len(got))
		}
		if got[0].ID != "c-3" {
			t.Errorf("expected newest first (c-3), got %s", got[0].ID)
		}
	})

	t.Run("similar contents", func(t *testing.T) {
		got, err := m.FindSimilarContents(ctx, "c-1", "tech", []string{"go"}, 10)
		if err != nil {
			t.Fatalf("FindSimilarContents: %v", err)
		}
		if len(got) != 1 || got[0].ID != "c-3" {
			t.Errorf("expected [c-3] (same category, seed and draft excluded), got %+v", got)
		}
	})

	t.Run("hot contents mixed", func(t *testing.T) {
		got, err := m.FindHotContents(ctx, recommend.ContentTypeMixed, 2)
		if err != nil {
			t.Fatalf("FindHotContents: %v", err)
		}
		if len(got) != 2 || got[0].ID != "c-1" || got[1].ID != "c-3" {
			t.Errorf("expected popularity order [c-1 c-3], got %+v", got)
		}
	})

	t.Run("hot contents by type excludes drafts", func(t *testing.T) {
		got, err := m.FindHotContents(ctx, "article", 10)
		if err != nil {
			t.Fatalf("FindHotContents: %v", err)
		}
		for _, c := range got {
			if c.ID == "c-4" {
				t.Error("draft content must not appear in hot list")
			}
		}
	})

	t.Run("all by id preserves input order", func(t *testing.T) {
		got, err := m.FindAllByID(ctx, []string{"c-3", "missing", "c-1"})
		if err != nil {
			t.Fatalf("FindAllByID: %v", err)
		}
		if len(got) != 2 || got[0].ID != "c-3" || got[1].ID != "c-1" {
			t.Errorf("expected [c-3 c-1], got %+v", got)
		}
	})
}

func TestMemoryCanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.FindHotContents(ctx, recommend.ContentTypeMixed, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := m.FindSimilarUsers(ctx, "u-1", 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	payload := `[
		{"id": "c-1", "title": "One", "content_type": "article", "category_id": "tech"},
		{"id": "c-2", "title": "Two", "content_type": "video", "category_id": "food", "status": "draft"}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	m := NewMemory()
	n, err := LoadCatalog(m, path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if n != 2 || m.ContentCount() != 2 {
		t.Fatalf("expected 2 entries loaded, got n=%d count=%d", n, m.ContentCount())
	}

	// Entries without a status default to published.
	got, err := m.FindAllByID(context.Background(), []string{"c-1", "c-2"})
	if err != nil {
		t.Fatalf("FindAllByID: %v", err)
	}
	if got[0].Status != recommend.StatusPublished {
		t.Errorf("expected defaulted status published, got %q", got[0].Status)
	}
	if got[1].Status != "draft" {
		t.Errorf("explicit status must be preserved, got %q", got[1].Status)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	m := NewMemory()

	if _, err := LoadCatalog(m, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"title": "no id"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadCatalog(m, bad); err == nil {
		t.Error("expected error for entry without id")
	}
}

type captivePublisher struct {
	published []*events.BehaviorEvent
	err       error
	closed    bool
}

func (p *captivePublisher) PublishBehavior(_ context.Context, ev *events.BehaviorEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

func (p *captivePublisher) Close() error {
	p.closed = true
	return nil
}

func TestRecordingPublisher(t *testing.T) {
	m := NewMemory()
	seedCatalog(m)
	inner := &captivePublisher{}
	pub := NewRecordingPublisher(m, inner)

	ev := events.NewBehaviorEvent("u-1", "c-1", "like")
	if err := pub.PublishBehavior(context.Background(), ev); err != nil {
		t.Fatalf("PublishBehavior: %v", err)
	}
	if len(inner.published) != 1 {
		t.Fatalf("event was not forwarded")
	}

	prefs, err := m.FindUserPreferredContents(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("FindUserPreferredContents: %v", err)
	}
	if len(prefs) != 1 || prefs[0].ContentID != "c-1" {
		t.Errorf("behavior was not recorded into the store: %+v", prefs)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !inner.closed {
		t.Error("Close was not forwarded")
	}
}

func TestRecordingPublisherKeepsStoreOnPublishFailure(t *testing.T) {
	m := NewMemory()
	inner := &captivePublisher{err: errors.New("broker down")}
	pub := NewRecordingPublisher(m, inner)

	ev := events.NewBehaviorEvent("u-9", "c-9", "click")
	if err := pub.PublishBehavior(context.Background(), ev); err == nil {
		t.Fatal("expected publish error")
	}

	ids, err := m.FindRecentViewedContentIDs(context.Background(), "u-9", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("FindRecentViewedContentIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "c-9" {
		t.Errorf("local record should survive a failed publish, got %v", ids)
	}
}
