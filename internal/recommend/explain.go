// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// reasonFor maps a recall source to a reader-facing phrase.
func reasonFor(source string) string {
	switch source {
	case "collaborative":
		return "people with similar taste engaged with this"
	case "content":
		return "similar to content you liked"
	case "hot", "hot-cache":
		return "trending now"
	case "history":
		return "matches categories you follow"
	case "static":
		return "editor's pick"
	default:
		return "recommended for you"
	}
}

// buildReason composes the explanation string from the contributing
// recall sources and the request context.
func buildReason(sources []string, uctx UserContext) string {
	if len(sources) == 0 {
		return "Recommended for you"
	}

	parts := make([]string, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		phrase := reasonFor(s)
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		parts = append(parts, phrase)
	}

	reason := strings.Join(parts, "; ")
	if uctx.TimeOfDay != "" {
		reason += ", picked for your " + uctx.TimeOfDay
	}
	// Capitalize the leading phrase.
	return strings.ToUpper(reason[:1]) + reason[1:]
}

// annotate fills Reason and Confidence on the final list. Confidence is
// the item's score relative to the list's top score.
func annotate(items []RankedItem, uctx UserContext) {
	if len(items) == 0 {
		return
	}

	top := items[0].Score
	for i := range items {
		items[i].Reason = buildReason(items[i].Sources, uctx)
		if top > 0 {
			items[i].Confidence = items[i].Score / top
		}
	}
}

// Explain describes why a content item is (or would be) recommended to
// a user. It checks the user's category preferences against the item's
// metadata and falls back to popularity framing.
func (p *Pipeline) Explain(ctx context.Context, userID, contentID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if strings.TrimSpace(contentID) == "" {
		return "", fmt.Errorf("%w: content_id is required", ErrValidation)
	}

	contents, err := p.contents.FindAllByID(ctx, []string{contentID})
	if err != nil {
		return "", fmt.Errorf("load content %s: %w", contentID, err)
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("%w: unknown content_id %q", ErrValidation, contentID)
	}
	content := contents[0]

	since := time.Now().AddDate(0, 0, -behaviorWindowDays)
	prefs, err := p.behaviors.FindUserCategoryPreferences(ctx, userID, since)
	if err != nil {
		// Preference lookup is best-effort; explain from popularity.
		prefs = nil
	}

	var total, categoryCount int
	for _, pref := range prefs {
		total += pref.Count
		if pref.CategoryID == content.CategoryID {
			categoryCount = pref.Count
		}
	}

	title := content.Title
	if title == "" {
		title = contentID
	}

	if total > 0 && categoryCount > 0 {
		share := float64(categoryCount) / float64(total)
		return fmt.Sprintf(
			"%q matches your interests: %.0f%% of your recent activity is in its category.",
			title, share*100), nil
	}
	if content.PopularityScore > 0 {
		return fmt.Sprintf("%q is trending with other readers right now.", title), nil
	}
	return fmt.Sprintf("%q broadens your feed beyond your usual categories.", title), nil
}

// behaviorWindowDays mirrors the recall strategies' behavior window.
const behaviorWindowDays = 30
