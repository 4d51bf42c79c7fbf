// internal/models/plan.go
package models

// Activity types used in itinerary days.
const (
	ActivityAccommodation  = "accommodation"
	ActivityFood           = "food"
	ActivityActivity       = "activity"
	ActivityTransportation = "transportation"
)

// TravelPlan is the structured itinerary returned by plan synthesis.
// Field names are the wire contract consumed by the UI and must not change.
type TravelPlan struct {
	Destination     string           `json:"destination"`
	DurationDays    int              `json:"durationDays"`
	Budget          float64          `json:"budget"`
	RemainingBudget float64          `json:"remainingBudget"`
	Weather         PlanWeather      `json:"weather"`
	Days            []ItineraryDay   `json:"days"`
	BudgetBreakdown BudgetBreakdown  `json:"budgetBreakdown"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PlanWeather is the summarized weather snippet embedded in a plan.
type PlanWeather struct {
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
}

type ItineraryDay struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

type BudgetBreakdown struct {
	Accommodation  float64 `json:"accommodation"`
	Food           float64 `json:"food"`
	Activities     float64 `json:"activities"`
	Transportation float64 `json:"transportation"`
	Miscellaneous  float64 `json:"miscellaneous"`
}

// Total sums every breakdown category.
func (b BudgetBreakdown) Total() float64 {
	return b.Accommodation + b.Food + b.Activities + b.Transportation + b.Miscellaneous
}

type Recommendation struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
}
