// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package ranker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedrank/internal/recommend"
)

// scoreRequest is the payload sent to the remote scoring service.
type scoreRequest struct {
	UserID     string          `json:"user_id"`
	Scene      string          `json:"scene,omitempty"`
	Candidates []scoredContent `json:"candidates"`
}

type scoredContent struct {
	ContentID string  `json:"content_id"`
	Score     float64 `json:"score"`
}

// scoreResponse is the remote model's answer: candidates reordered by
// model score, best first.
type scoreResponse struct {
	Items []scoredContent `json:"items"`
}

// HTTPConfig configures the remote ranking client.
type HTTPConfig struct {
	// URL is the scoring endpoint.
	URL string

	// Timeout bounds the full round trip.
	Timeout time.Duration
}

// HTTP calls a remote scoring model over HTTP. Calls are always made
// through the resilience gateway, which owns retry-free timeout and
// breaker behavior; the client only enforces its own transport timeout.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates a remote ranking client.
func NewHTTP(cfg HTTPConfig) *HTTP {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &HTTP{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

// Rank posts the candidates to the scoring service and applies the
// returned order. Candidates the service does not mention are appended
// after the scored ones in their original order.
func (h *HTTP) Rank(ctx context.Context, userID string, candidates []recommend.Candidate, scene string) ([]recommend.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	payload := scoreRequest{
		UserID:     userID,
		Scene:      scene,
		Candidates: make([]scoredContent, len(candidates)),
	}
	for i, c := range candidates {
		payload.Candidates[i] = scoredContent{ContentID: c.ContentID, Score: c.Score}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("score request failed with status %d: %s", resp.StatusCode, string(msg))
	}

	var scored scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}

	return applyOrder(candidates, scored.Items), nil
}

// applyOrder reorders candidates to match the scored list, carrying the
// model scores over, then appends any unscored leftovers.
func applyOrder(candidates []recommend.Candidate, items []scoredContent) []recommend.Candidate {
	byID := make(map[string]recommend.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ContentID] = c
	}

	out := make([]recommend.Candidate, 0, len(candidates))
	used := make(map[string]struct{}, len(items))
	for _, item := range items {
		c, ok := byID[item.ContentID]
		if !ok {
			continue
		}
		if _, dup := used[item.ContentID]; dup {
			continue
		}
		used[item.ContentID] = struct{}{}
		c.Score = item.Score
		out = append(out, c)
	}
	for _, c := range candidates {
		if _, ok := used[c.ContentID]; !ok {
			out = append(out, c)
		}
	}
	return out
}
