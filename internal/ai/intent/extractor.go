// internal/ai/intent/extractor.go
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"travel-assistant/internal/models"
)

// Extraction is best-effort pattern matching over user messages. Fields
// that never match stay nil; callers prompt the user for the rest.
var (
	destinationRe = regexp.MustCompile(`\b(?:to|in|for)\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)`)
	durationRe    = regexp.MustCompile(`(?i)\b(\d+)[-\s]?days?\b`)
	budgetRe      = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)`)
	interestsRe   = regexp.MustCompile(`(?i)(?:interested in|enjoy|love)\s+(.+)`)
	startDateRe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	interestSplit = regexp.MustCompile(`(?i)\s*(?:,|\band\b)\s*`)
)

// Extract scans user messages in order and pulls trip parameters out of
// them. The first match for each field wins; later messages never
// overwrite an already-extracted value. Pure function, safe to call
// repeatedly on the same history.
func Extract(messages []models.Message) models.TravelIntent {
	var intent models.TravelIntent

	for _, msg := range messages {
		if msg.Role != models.RoleUser {
			continue
		}

		if intent.Destination == nil {
			if m := destinationRe.FindStringSubmatch(msg.Content); m != nil {
				dest := m[1]
				intent.Destination = &dest
			}
		}

		if intent.DurationDays == nil {
			if m := durationRe.FindStringSubmatch(msg.Content); m != nil {
				if days, err := strconv.Atoi(m[1]); err == nil {
					intent.DurationDays = &days
				}
			}
		}

		if intent.BudgetAmount == nil {
			if m := budgetRe.FindStringSubmatch(msg.Content); m != nil {
				raw := strings.ReplaceAll(m[1], ",", "")
				if amount, err := strconv.ParseFloat(raw, 64); err == nil {
					intent.BudgetAmount = &amount
				}
			}
		}

		if intent.Interests == nil {
			if m := interestsRe.FindStringSubmatch(msg.Content); m != nil {
				if interests := parseInterests(m[1]); len(interests) > 0 {
					intent.Interests = interests
				}
			}
		}

		if intent.StartDate == nil {
			if m := startDateRe.FindStringSubmatch(msg.Content); m != nil {
				date := m[1]
				intent.StartDate = &date
			}
		}
	}

	return intent
}

func parseInterests(raw string) []string {
	// Interests run to the end of the sentence at most.
	if i := strings.IndexAny(raw, ".!?"); i >= 0 {
		raw = raw[:i]
	}

	var out []string
	for _, tok := range interestSplit.Split(raw, -1) {
		for _, word := range strings.Fields(tok) {
			word = strings.ToLower(strings.Trim(word, ",."))
			if len(word) > 2 {
				out = append(out, word)
			}
		}
	}
	return out
}
