// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package reranking

import (
	"context"
	"testing"

	"github.com/tomtom215/feedrank/internal/recommend"
)

func typedItem(id, category, contentType string, score float64) recommend.RankedItem {
	return recommend.RankedItem{
		ContentID:   id,
		CategoryID:  category,
		ContentType: contentType,
		Score:       score,
	}
}

func TestPersonalizeTimeOfDayBoost(t *testing.T) {
	p := NewPersonalize(Boosts{
		TimeOfDay: map[string]map[string]float64{
			recommend.TimeOfDayEvening: {"video": 2.0},
		},
	}, 1)

	items := []recommend.RankedItem{
		typedItem("article1", "tech", "article", 1.0),
		typedItem("video1", "tech", "video", 0.6),
	}

	out := p.Rerank(context.Background(), items, recommend.RerankContext{
		User: recommend.UserContext{TimeOfDay: recommend.TimeOfDayEvening},
	})

	// video1 lifts to 1.2 and overtakes article1.
	assertIDs(t, out, []string{"video1", "article1"})

	// Outside the boosted bucket the original order holds.
	out = p.Rerank(context.Background(), items, recommend.RerankContext{
		User: recommend.UserContext{TimeOfDay: recommend.TimeOfDayMorning},
	})
	assertIDs(t, out, []string{"article1", "video1"})
}

func TestPersonalizeBoostsCompound(t *testing.T) {
	p := NewPersonalize(Boosts{
		TimeOfDay: map[string]map[string]float64{
			recommend.TimeOfDayNight: {"video": 1.5},
		},
		Device: map[string]map[string]float64{
			"mobile": {"video": 1.5},
		},
	}, 1)

	items := []recommend.RankedItem{typedItem("v", "tech", "video", 1.0)}

	out := p.Rerank(context.Background(), items, recommend.RerankContext{
		User: recommend.UserContext{
			TimeOfDay:  recommend.TimeOfDayNight,
			DeviceType: "mobile",
		},
	})

	if got := out[0].Score; got != 2.25 {
		t.Errorf("expected compounded score 2.25, got %v", got)
	}
}

func TestPersonalizeTreatmentBoostsNonDominant(t *testing.T) {
	p := NewPersonalize(Boosts{}, 1.5)

	items := []recommend.RankedItem{
		typedItem("a1", "tech", "article", 1.0),
		typedItem("a2", "tech", "article", 0.9),
		typedItem("b1", "life", "article", 0.8),
	}

	control := p.Rerank(context.Background(), items, recommend.RerankContext{
		Assignment: recommend.Assignment{Variant: recommend.VariantControl},
	})
	assertIDs(t, control, []string{"a1", "a2", "b1"})

	treatment := p.Rerank(context.Background(), items, recommend.RerankContext{
		Assignment: recommend.Assignment{Variant: recommend.VariantTreatment},
	})
	// life is non-dominant: b1 lifts to 1.2 and takes the lead.
	assertIDs(t, treatment, []string{"b1", "a1", "a2"})
}

func TestPersonalizeDeterministicTies(t *testing.T) {
	p := NewPersonalize(Boosts{}, 1)

	items := []recommend.RankedItem{
		typedItem("b", "tech", "article", 1.0),
		typedItem("a", "tech", "article", 1.0),
	}

	out := p.Rerank(context.Background(), items, recommend.RerankContext{})
	assertIDs(t, out, []string{"a", "b"})
}

func TestPersonalizeDoesNotMutateInput(t *testing.T) {
	p := NewPersonalize(Boosts{
		TimeOfDay: map[string]map[string]float64{
			recommend.TimeOfDayEvening: {"video": 2.0},
		},
	}, 1)

	items := []recommend.RankedItem{typedItem("v", "tech", "video", 1.0)}

	_ = p.Rerank(context.Background(), items, recommend.RerankContext{
		User: recommend.UserContext{TimeOfDay: recommend.TimeOfDayEvening},
	})

	if items[0].Score != 1.0 {
		t.Errorf("input slice mutated: score %v", items[0].Score)
	}
}

func TestPersonalizeEmpty(t *testing.T) {
	p := NewPersonalize(Boosts{}, 1.5)

	out := p.Rerank(context.Background(), nil, recommend.RerankContext{})
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", ids(out))
	}
}
