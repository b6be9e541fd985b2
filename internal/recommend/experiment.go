// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"hash/fnv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedrank/internal/cache"
)

// ExperimentConfig names a running experiment and the share of users
// assigned to treatment.
type ExperimentConfig struct {
	// Name identifies the experiment in assignments and response metadata.
	Name string

	// TreatmentPercent is the share of users in treatment, 0-100.
	TreatmentPercent uint32
}

// Experiments produces deterministic per-user variant assignments.
//
// The variant is a pure FNV-1a hash of userID and experiment name, so
// the same user always lands in the same bucket. Assignments are
// additionally cached under the user-features namespace; the cache is
// cosmetic for correctness but keeps the hot path allocation-free on
// repeat requests.
type Experiments struct {
	cfg   ExperimentConfig
	store *cache.Tiered
}

// NewExperiments creates the assigner. store may be nil, in which case
// every assignment is recomputed.
func NewExperiments(cfg ExperimentConfig, store *cache.Tiered) *Experiments {
	if cfg.TreatmentPercent > 100 {
		cfg.TreatmentPercent = 100
	}
	return &Experiments{cfg: cfg, store: store}
}

// Name returns the configured experiment name.
func (e *Experiments) Name() string {
	return e.cfg.Name
}

// Assign returns the user's variant for the configured experiment.
// An empty experiment name disables experimentation and assigns control.
func (e *Experiments) Assign(ctx context.Context, userID string) Assignment {
	if e.cfg.Name == "" {
		return Assignment{Variant: VariantControl}
	}

	key := cache.UserKey(userID) + ":exp:" + e.cfg.Name
	if e.store != nil {
		if raw, ok := e.store.Get(ctx, key); ok {
			var a Assignment
			if err := json.Unmarshal(raw, &a); err == nil {
				return a
			}
		}
	}

	a := Assignment{
		Experiment: e.cfg.Name,
		Variant:    e.variantFor(userID),
	}

	if e.store != nil {
		if raw, err := json.Marshal(a); err == nil {
			e.store.Set(ctx, key, raw)
		}
	}
	return a
}

func (e *Experiments) variantFor(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(e.cfg.Name))

	if h.Sum32()%100 < e.cfg.TreatmentPercent {
		return VariantTreatment
	}
	return VariantControl
}
