// internal/models/intent.go
package models

// TravelIntent holds whatever trip parameters could be pulled out of the
// user's messages. Nil fields were never mentioned, not guessed.
type TravelIntent struct {
	Destination  *string  `json:"destination,omitempty"`
	DurationDays *int     `json:"durationDays,omitempty"`
	BudgetAmount *float64 `json:"budgetAmount,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	StartDate    *string  `json:"startDate,omitempty"`
}

// Complete reports whether the intent carries everything the plan
// synthesizer requires.
func (i TravelIntent) Complete() bool {
	return i.Destination != nil && i.DurationDays != nil && i.BudgetAmount != nil
}
