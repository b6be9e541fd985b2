// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package store

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// LoadCatalog reads a JSON content catalog (an array of content objects)
// into the store. Entries without an ID are rejected.
func LoadCatalog(m *Memory, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}

	var contents []recommend.Content
	if err := json.Unmarshal(data, &contents); err != nil {
		return 0, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	for i, c := range contents {
		if c.ID == "" {
			return 0, fmt.Errorf("catalog %s: entry %d has no id", path, i)
		}
		if c.Status == "" {
			c.Status = recommend.StatusPublished
		}
		m.UpsertContent(c)
	}
	return len(contents), nil
}
