// internal/ai/synthesis/prompt.go
package synthesis

import (
	"fmt"
	"strings"
)

const planSystemPrompt = `You are a travel planning assistant. You produce complete day-by-day travel itineraries as JSON.

Respond with a single JSON object and nothing else. The object must have exactly this shape:

{
  "destination": string,
  "durationDays": integer,
  "budget": number,
  "remainingBudget": number,
  "weather": {"temp": number, "condition": string},
  "days": [
    {
      "day": integer,
      "title": string,
      "activities": [
        {"type": "accommodation" | "food" | "activity" | "transportation", "description": string, "cost": number}
      ]
    }
  ],
  "budgetBreakdown": {
    "accommodation": number,
    "food": number,
    "activities": number,
    "transportation": number,
    "miscellaneous": number
  },
  "recommendations": [
    {"name": string, "description": string, "rating": number}
  ]
}

Rules:
- Produce exactly one entry in "days" per trip day, numbered 1 through the trip length with no gaps.
- Every cost must be a realistic non-negative number in the trip currency.
- The budget breakdown must cover exactly the five categories listed, each non-negative.
- Every recommendation rating must be between 1.0 and 5.0.
- "remainingBudget" is the budget minus the total cost of all activities across all days.
- Do not wrap the JSON in markdown code fences.`

// buildPlanRequest renders the user-turn prompt for a synthesis call.
func buildPlanRequest(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day travel plan for %s with a total budget of $%.2f.", req.DurationDays, req.Destination, req.Budget)
	if len(req.Interests) > 0 {
		fmt.Fprintf(&b, " The traveler is interested in: %s.", strings.Join(req.Interests, ", "))
	}
	if req.StartDate != "" {
		fmt.Fprintf(&b, " The trip starts on %s.", req.StartDate)
	}
	return b.String()
}
