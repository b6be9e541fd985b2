// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/feedrank/internal/metrics"
)

// Sentinel errors surfaced by Execute before a fallback is consulted.
var (
	// ErrTimeout marks a call that exceeded its execution timeout. The
	// underlying function keeps running in the background; its eventual
	// result is discarded.
	ErrTimeout = errors.New("resilience: execution timed out")

	// ErrBulkheadFull marks a call rejected because the command's
	// concurrency slots were all occupied.
	ErrBulkheadFull = errors.New("resilience: bulkhead saturated")

	// ErrUnknownCommand marks a call against an unregistered command key.
	ErrUnknownCommand = errors.New("resilience: unknown command")
)

// CommandConfig configures one wrapped dependency.
type CommandConfig struct {
	// Name is the command key (e.g. "recall", "ranking", "pipeline").
	Name string

	// ErrorThreshold is the failure ratio (0-1] that opens the breaker
	// once MinVolume calls have been observed in the rolling window.
	ErrorThreshold float64

	// MinVolume is the minimum call count before the threshold applies.
	MinVolume uint32

	// SleepWindow is how long an open breaker waits before allowing a
	// half-open trial call.
	SleepWindow time.Duration

	// Timeout bounds each call; exceeding it counts as a failure.
	Timeout time.Duration

	// RollingWindow is the closed-state counting window; counts reset
	// when it elapses.
	RollingWindow time.Duration

	// MaxConcurrent bounds in-flight calls for the command (bulkhead).
	// Abandoned timed-out calls occupy a slot until they finish.
	MaxConcurrent int
}

// withDefaults fills zero values with production defaults.
func (c CommandConfig) withDefaults() CommandConfig {
	if c.ErrorThreshold <= 0 || c.ErrorThreshold > 1 {
		c.ErrorThreshold = 0.5
	}
	if c.MinVolume == 0 {
		c.MinVolume = 10
	}
	if c.SleepWindow <= 0 {
		c.SleepWindow = 3 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	if c.RollingWindow <= 0 {
		c.RollingWindow = time.Minute
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 32
	}
	return c
}

// Fallback produces a degraded result after the primary call failed.
// The error is the primary failure (timeout, breaker open, or call error).
type Fallback func(ctx context.Context, cause error) (interface{}, error)

// Gateway wraps externally-dependent calls with independent circuit
// breakers, execution timeouts, bulkheads and fallback dispatch, one
// command key per dependency. It is safe for concurrent use; state
// transitions for a shared command key happen exactly once across
// concurrent callers.
type Gateway struct {
	mu       sync.RWMutex
	commands map[string]*command
	logger   zerolog.Logger
}

type command struct {
	cfg   CommandConfig
	cb    *gobreaker.CircuitBreaker[interface{}]
	slots chan struct{}
}

// NewGateway creates an empty gateway.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGateway(logger zerolog.Logger) *Gateway {
	return &Gateway{
		commands: make(map[string]*command),
		logger:   logger.With().Str("component", "resilience").Logger(),
	}
}

// Register adds a command key. Registering an existing key replaces its
// breaker and resets its state.
func (g *Gateway) Register(cfg CommandConfig) {
	cfg = cfg.withDefaults()

	metrics.BreakerState.WithLabelValues(cfg.Name).Set(0)

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1, // exactly one half-open trial call
		Interval:    cfg.RollingWindow,
		Timeout:     cfg.SleepWindow,
		// gobreaker consults ReadyToTrip on failed calls only, so a
		// window that crosses the threshold but ends on a success
		// stays closed until the next failure.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinVolume {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= cfg.ErrorThreshold
			if trip {
				g.logger.Warn().
					Str("command", cfg.Name).
					Uint32("requests", counts.Requests).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", ratio).
					Msg("opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			g.logger.Info().
				Str("command", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit state transition")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.BreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	}

	cmd := &command{
		cfg:   cfg,
		cb:    gobreaker.NewCircuitBreaker[interface{}](settings),
		slots: make(chan struct{}, cfg.MaxConcurrent),
	}

	g.mu.Lock()
	g.commands[cfg.Name] = cmd
	g.mu.Unlock()

	g.logger.Info().
		Str("command", cfg.Name).
		Float64("error_threshold", cfg.ErrorThreshold).
		Uint32("min_volume", cfg.MinVolume).
		Dur("sleep_window", cfg.SleepWindow).
		Dur("timeout", cfg.Timeout).
		Msg("registered command")
}

// Execute runs fn under the named command's breaker, timeout and bulkhead.
// On any failure the fallback (when non-nil) produces the result and the
// degraded flag is set. Without a fallback the primary error is returned.
func (g *Gateway) Execute(ctx context.Context, name string, fn func(context.Context) (interface{}, error), fallback Fallback) (result interface{}, degraded bool, err error) {
	cmd := g.lookup(name)
	if cmd == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	result, err = cmd.cb.Execute(func() (interface{}, error) {
		return cmd.run(ctx, fn)
	})

	if err == nil {
		metrics.BreakerRequests.WithLabelValues(name, "success").Inc()
		return result, false, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.BreakerRequests.WithLabelValues(name, "rejected").Inc()
	case errors.Is(err, ErrTimeout):
		metrics.BreakerRequests.WithLabelValues(name, "timeout").Inc()
	default:
		metrics.BreakerRequests.WithLabelValues(name, "failure").Inc()
	}

	if fallback == nil {
		return nil, false, err
	}

	g.logger.Debug().
		Str("command", name).
		Err(err).
		Msg("dispatching fallback")

	result, ferr := fallback(ctx, err)
	return result, true, ferr
}

// run executes fn bounded by the command's bulkhead and timeout. A call
// that exceeds the timeout is abandoned, not cancelled: the worker
// goroutine keeps its bulkhead slot until fn returns and the result is
// discarded. The child context still carries the deadline so cooperative
// callees can stop early. A panic inside fn is recovered on the worker
// and surfaces as a command failure.
func (c *command) run(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	select {
	case c.slots <- struct{}{}:
	default:
		return nil, ErrBulkheadFull
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)

	type outcome struct {
		result interface{}
		err    error
	}
	ch := make(chan outcome, 1)

	go func() {
		defer func() { <-c.slots }()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("command %s panicked: %v", c.cfg.Name, r)}
			}
		}()
		res, err := fn(callCtx)
		ch <- outcome{result: res, err: err}
	}()

	timer := time.NewTimer(c.cfg.Timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		return o.result, o.err
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the breaker state string for a command key, "unknown"
// for unregistered keys.
func (g *Gateway) State(name string) string {
	cmd := g.lookup(name)
	if cmd == nil {
		return "unknown"
	}
	return stateToString(cmd.cb.State())
}

// Counts returns the breaker counters for a command key.
func (g *Gateway) Counts(name string) gobreaker.Counts {
	cmd := g.lookup(name)
	if cmd == nil {
		return gobreaker.Counts{}
	}
	return cmd.cb.Counts()
}

func (g *Gateway) lookup(name string) *command {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.commands[name]
}

// stateToFloat converts a breaker state to its gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts a breaker state to its label value.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
