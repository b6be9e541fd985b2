// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"strings"
	"time"
)

// Key namespaces. Every cached value lives under exactly one of these
// prefixes, and the prefix determines its TTL.
const (
	PrefixResult  = "rec:result:"
	PrefixUser    = "rec:user:"
	PrefixContent = "rec:content:"
	PrefixHot     = "rec:hot:"
)

// Per-namespace TTLs.
const (
	TTLResult  = 30 * time.Minute
	TTLUser    = 60 * time.Minute
	TTLContent = 120 * time.Minute
	TTLHot     = 60 * time.Minute
)

// ResultKey is the cache key for a full recommendation response.
func ResultKey(userID, contentType, scene string) string {
	return PrefixResult + userID + ":" + contentType + ":" + scene
}

// UserKey is the cache key for derived per-user features such as
// request context and experiment assignments.
func UserKey(userID string) string {
	return PrefixUser + userID
}

// ContentKey is the cache key for content metadata.
func ContentKey(contentID string) string {
	return PrefixContent + contentID
}

// HotKey is the cache key for the precomputed hot list of a content type.
func HotKey(contentType string) string {
	return PrefixHot + contentType
}

// UserResultPrefix matches every cached result for one user across all
// content types and scenes. Used for invalidation on behavior updates.
func UserResultPrefix(userID string) string {
	return PrefixResult + userID + ":"
}

// TTLFor returns the TTL for a key based on its namespace. Unrecognized
// keys get the shortest TTL so a naming mistake cannot pin an entry.
func TTLFor(key string) time.Duration {
	switch {
	case strings.HasPrefix(key, PrefixResult):
		return TTLResult
	case strings.HasPrefix(key, PrefixUser):
		return TTLUser
	case strings.HasPrefix(key, PrefixContent):
		return TTLContent
	case strings.HasPrefix(key, PrefixHot):
		return TTLHot
	default:
		return TTLResult
	}
}
