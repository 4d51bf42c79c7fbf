// internal/ai/synthesis/synthesizer.go
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"travel-assistant/internal/ai/provider"
	"travel-assistant/internal/ai/router"
	commonerrors "travel-assistant/internal/common/errors"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/common/metrics"
	"travel-assistant/internal/models"

	"github.com/samber/lo"
)

// Caller abstracts the provider router for testability.
type Caller interface {
	Call(ctx context.Context, spec router.PromptSpec) (*router.Result, error)
}

// Request carries the structured parameters a plan is built from. They
// come from the intent extractor or an explicit form submission.
type Request struct {
	Destination  string
	DurationDays int
	Budget       float64
	Interests    []string
	StartDate    string
}

// Synthesizer turns a structured plan request into a validated TravelPlan.
type Synthesizer struct {
	caller Caller
	logger logger.Logger
}

func New(caller Caller, log logger.Logger) *Synthesizer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Synthesizer{caller: caller, logger: log}
}

// Synthesize asks the providers for an itinerary and validates the reply
// into a TravelPlan. It does not retry; provider fallback is the
// router's job, and an invalid structured reply fails the call.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (*models.TravelPlan, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	result, err := s.caller.Call(ctx, router.PromptSpec{
		System:   planSystemPrompt,
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: buildPlanRequest(req)}},
		JSONMode: true,
	})
	if err != nil {
		metrics.PlansGenerated.WithLabelValues("provider_failure").Inc()
		return nil, err
	}

	plan, err := s.validate(result.Content, req)
	if err != nil {
		metrics.PlansGenerated.WithLabelValues("invalid").Inc()
		return nil, err
	}

	metrics.PlansGenerated.WithLabelValues("success").Inc()
	s.logger.Info("travel plan synthesized", map[string]interface{}{
		"destination":  plan.Destination,
		"durationDays": plan.DurationDays,
		"provider":     result.Provider,
	})
	return plan, nil
}

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.Destination) == "":
		return commonerrors.New(commonerrors.ErrCodeInvalidRequest, "destination is required")
	case req.DurationDays < 1:
		return commonerrors.New(commonerrors.ErrCodeInvalidRequest, "durationDays must be at least 1")
	case req.Budget <= 0:
		return commonerrors.New(commonerrors.ErrCodeInvalidRequest, "budget must be positive")
	}
	return nil
}

// validate parses the raw provider JSON, enforces the schema and numeric
// ranges, and recomputes the derived remainingBudget. The model's own
// arithmetic is never trusted for derived fields.
func (s *Synthesizer) validate(raw string, req Request) (*models.TravelPlan, error) {
	violations, err := validateSchema(raw)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.ErrCodePlanSchemaInvalid, "plan schema check failed", err)
	}
	if len(violations) > 0 {
		return nil, commonerrors.New(commonerrors.ErrCodePlanSchemaInvalid,
			fmt.Sprintf("plan violates schema: %s", strings.Join(violations, "; ")))
	}

	var plan models.TravelPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, commonerrors.Wrap(commonerrors.ErrCodePlanSchemaInvalid, "plan is not valid JSON", err)
	}

	if err := checkRanges(&plan, req); err != nil {
		return nil, err
	}

	s.correctRemainingBudget(&plan)
	return &plan, nil
}

func checkRanges(plan *models.TravelPlan, req Request) error {
	rangeErr := func(format string, args ...interface{}) error {
		return commonerrors.New(commonerrors.ErrCodePlanRangeInvalid, fmt.Sprintf(format, args...))
	}

	if len(plan.Days) != req.DurationDays {
		return rangeErr("expected %d days, got %d", req.DurationDays, len(plan.Days))
	}

	// Day numbers must be exactly 1..N, no gaps or duplicates.
	seen := make(map[int]bool, len(plan.Days))
	for _, day := range plan.Days {
		if day.Day < 1 || day.Day > req.DurationDays || seen[day.Day] {
			return rangeErr("day numbers must be a contiguous 1..%d sequence, got day %d", req.DurationDays, day.Day)
		}
		seen[day.Day] = true

		for _, act := range day.Activities {
			if act.Cost < 0 {
				return rangeErr("day %d activity %q has negative cost %.2f", day.Day, act.Description, act.Cost)
			}
		}
	}

	if plan.Budget < 0 {
		return rangeErr("budget is negative: %.2f", plan.Budget)
	}

	bb := plan.BudgetBreakdown
	for name, v := range map[string]float64{
		"accommodation":  bb.Accommodation,
		"food":           bb.Food,
		"activities":     bb.Activities,
		"transportation": bb.Transportation,
		"miscellaneous":  bb.Miscellaneous,
	} {
		if v < 0 {
			return rangeErr("budgetBreakdown.%s is negative: %.2f", name, v)
		}
	}

	for _, rec := range plan.Recommendations {
		if rec.Rating < 1.0 || rec.Rating > 5.0 {
			return rangeErr("recommendation %q rating %.1f outside [1.0, 5.0]", rec.Name, rec.Rating)
		}
	}

	return nil
}

// correctRemainingBudget replaces the model's stated remainingBudget with
// the value recomputed from activity costs. A deviation beyond the
// tolerance is logged since it usually means the whole itinerary's
// arithmetic is shaky; the breakdown total gets the same treatment.
func (s *Synthesizer) correctRemainingBudget(plan *models.TravelPlan) {
	spent := lo.SumBy(plan.Days, func(day models.ItineraryDay) float64 {
		return lo.SumBy(day.Activities, func(act models.Activity) float64 {
			return act.Cost
		})
	})
	recomputed := plan.Budget - spent

	tolerance := math.Max(plan.Budget*0.01, 5.0)
	if math.Abs(plan.RemainingBudget-recomputed) > tolerance {
		s.logger.Warn("model remainingBudget deviates from activity costs", map[string]interface{}{
			"stated":     plan.RemainingBudget,
			"recomputed": recomputed,
			"tolerance":  tolerance,
		})
	}
	plan.RemainingBudget = recomputed

	if diff := math.Abs(plan.BudgetBreakdown.Total() - spent); diff > tolerance {
		s.logger.Warn("budgetBreakdown does not sum to spent amount", map[string]interface{}{
			"breakdownTotal": plan.BudgetBreakdown.Total(),
			"spent":          spent,
			"difference":     diff,
		})
	}
}
