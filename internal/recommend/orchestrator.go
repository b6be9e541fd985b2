// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// Strategy is a single recall source. Implementations must be safe for
// concurrent use; the orchestrator invokes all registered strategies in
// parallel for every request.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "collaborative", "hot").
	Name() string

	// Weight returns the static merge weight for this strategy.
	Weight() float64

	// Recall returns an ordered candidate list for the request, best first.
	Recall(ctx context.Context, req Request) ([]Candidate, error)
}

// ErrStrategyTimeout is recorded on an outcome whose strategy exceeded its
// execution timeout. The underlying call is not cancelled; its result is
// discarded when it eventually returns.
var ErrStrategyTimeout = errors.New("recall strategy timed out")

// Orchestrator fans a recall request out to every registered strategy and
// joins on all of them, tolerating individual failures. It never fails the
// whole call because one strategy failed; if all strategies fail it returns
// an empty outcome list, which the pipeline treats as a recall-level
// fallback trigger.
type Orchestrator struct {
	strategies []Strategy
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewOrchestrator creates an orchestrator with a per-strategy execution
// timeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(timeout time.Duration, logger zerolog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Orchestrator{
		timeout: timeout,
		logger:  logger.With().Str("component", "recall").Logger(),
	}
}

// Register adds a strategy to the fan-out set. Not safe to call
// concurrently with Recall; registration happens at composition time.
func (o *Orchestrator) Register(s Strategy) {
	o.strategies = append(o.strategies, s)
	o.logger.Info().
		Str("strategy", s.Name()).
		Float64("weight", s.Weight()).
		Msg("registered recall strategy")
}

// Strategies returns the registered strategies in registration order.
func (o *Orchestrator) Strategies() []Strategy {
	return o.strategies
}

// Recall runs every registered strategy concurrently, each bounded by the
// orchestrator's per-strategy timeout, and returns the outcomes of the
// strategies that succeeded. Outcomes keep registration order so that merge
// input is deterministic regardless of completion order.
func (o *Orchestrator) Recall(ctx context.Context, req Request) []RecallOutcome {
	results := make([]RecallOutcome, len(o.strategies))
	done := make([]chan struct{}, len(o.strategies))

	for i, s := range o.strategies {
		done[i] = make(chan struct{})
		go func(idx int, strat Strategy) {
			results[idx] = o.runStrategy(ctx, strat, req)
			close(done[idx])
		}(i, s)
	}

	// Join on all strategies; each goroutine enforces its own timeout,
	// so this wait is bounded by the slowest strategy's deadline.
	for i := range done {
		<-done[i]
	}

	outcomes := make([]RecallOutcome, 0, len(results))
	for _, r := range results {
		if r.OK() {
			outcomes = append(outcomes, r)
			continue
		}
		o.logger.Warn().
			Str("strategy", r.Algorithm).
			Err(r.Err).
			Dur("elapsed", r.Elapsed).
			Msg("recall strategy failed")
	}

	return outcomes
}

// runStrategy executes a single strategy under the per-strategy timeout.
// On timeout the strategy keeps running in the background and its eventual
// result is discarded; the context deadline lets well-behaved collaborators
// stop early on their own.
func (o *Orchestrator) runStrategy(ctx context.Context, s Strategy, req Request) RecallOutcome {
	start := time.Now()
	outcome := RecallOutcome{
		Algorithm: s.Name(),
		Weight:    s.Weight(),
	}

	sctx, cancel := context.WithTimeout(ctx, o.timeout)

	type result struct {
		candidates []Candidate
		err        error
	}
	ch := make(chan result, 1)

	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("strategy %s panicked: %v", s.Name(), r)}
			}
		}()
		candidates, err := s.Recall(sctx, req)
		ch <- result{candidates: candidates, err: err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		outcome.Candidates = r.candidates
		outcome.Err = r.err
	case <-timer.C:
		outcome.Err = ErrStrategyTimeout
	case <-ctx.Done():
		outcome.Err = ctx.Err()
	}

	outcome.Elapsed = time.Since(start)

	status := "ok"
	if outcome.Err != nil {
		status = "error"
	}
	metrics.RecallDuration.WithLabelValues(s.Name(), status).Observe(outcome.Elapsed.Seconds())
	if outcome.Err == nil {
		metrics.RecallCandidates.WithLabelValues(s.Name()).Observe(float64(len(outcome.Candidates)))
	}

	return outcome
}
