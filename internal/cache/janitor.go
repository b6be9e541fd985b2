// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// gcRunner is satisfied by *BadgerCache. The janitor triggers value log
// GC on it alongside the local expiry sweep.
type gcRunner interface {
	RunGC() bool
}

// Janitor periodically sweeps expired entries out of the local tier and
// runs garbage collection on the shared tier. It implements
// suture.Service and runs under the supervision tree.
type Janitor struct {
	tiered   *Tiered
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitor creates the cache janitor. interval defaults to five
// minutes when zero.
func NewJanitor(tiered *Tiered, interval time.Duration, logger zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{
		tiered:   tiered,
		interval: interval,
		logger:   logger.With().Str("component", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service. It sweeps on every tick until the
// context is canceled.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	start := time.Now()
	removed := j.tiered.Local().CleanupExpired()

	gcRan := false
	if gc, ok := j.tiered.shared.(gcRunner); ok {
		gcRan = gc.RunGC()
	}

	j.logger.Debug().
		Int("expired_removed", removed).
		Bool("value_log_gc", gcRan).
		Dur("elapsed", time.Since(start)).
		Msg("cache sweep complete")
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (j *Janitor) String() string {
	return "cache-janitor"
}
