// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"context"
	"time"
)

// Shared is the cross-process cache tier. Implementations must be safe
// for concurrent use.
//
// A missing key is not an error: Get returns found=false with a nil
// error. Errors signal that the tier itself is unhealthy, and callers
// degrade to the local tier rather than failing the request.
type Shared interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry stored under key. Deleting a missing
	// key is a no-op.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix
	// and returns the number removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Close releases the tier's resources.
	Close() error
}
