// internal/conversation/manager.go
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-assistant/internal/ai/intent"
	"travel-assistant/internal/ai/synthesis"
	commonerrors "travel-assistant/internal/common/errors"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/common/metrics"
	"travel-assistant/internal/models"
)

// Turn kinds returned to the caller. Collect means the UI should show
// the structured-plan form rather than a chat reply.
const (
	KindChat    = "chat"
	KindCollect = "collect"
	KindPlan    = "plan"
)

var planKeywords = []string{"plan", "trip", "travel"}

const contextMarker = "[Context:"

// TurnRequest is one incoming user turn. PlanFlowActive is owned by the
// caller: the UI knows whether its plan form is already open.
type TurnRequest struct {
	TripID         string
	UserID         string
	Text           string
	PlanFlowActive bool
}

// TurnResult carries the assistant message plus routing info the UI
// needs to decide what to render.
type TurnResult struct {
	Kind    string              `json:"kind"`
	Message models.Message      `json:"message"`
	Intent  models.TravelIntent `json:"intent"`
}

type planSynthesizer interface {
	Synthesize(ctx context.Context, req synthesis.Request) (*models.TravelPlan, error)
}

type chatResponder interface {
	Respond(ctx context.Context, history []models.Message, newMessage string, weather *models.Weather) (*models.Message, error)
}

type weatherLookup interface {
	Lookup(ctx context.Context, location string) (*models.Weather, error)
}

// Manager dispatches user turns between the plan-collection flow and
// open chat, and keeps the trip's history appended through the store.
// It holds no per-trip state between calls.
type Manager struct {
	store       Store
	synthesizer planSynthesizer
	responder   chatResponder
	weather     weatherLookup
	logger      logger.Logger
}

func NewManager(store Store, synth planSynthesizer, resp chatResponder, weather weatherLookup, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Manager{
		store:       store,
		synthesizer: synth,
		responder:   resp,
		weather:     weather,
		logger:      log,
	}
}

// HandleTurn appends the user message, decides between the structured
// plan flow and open chat, appends the assistant reply, and returns it.
func (m *Manager) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	userMsg := models.Message{
		Role:      models.RoleUser,
		Content:   req.Text,
		Timestamp: time.Now().UTC(),
		TripID:    req.TripID,
		UserID:    req.UserID,
	}
	if err := m.store.Append(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := m.store.Fetch(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	extracted := intent.Extract(history)

	if m.wantsPlanFlow(req) {
		return m.collectTurn(ctx, req, extracted)
	}
	return m.chatTurn(ctx, req, history, extracted)
}

// wantsPlanFlow is the routing rule: trip keywords or an embedded
// context marker start the plan flow, unless one is already running.
// Keywords match as substrings, so "planning" and "roadtrip" count.
func (m *Manager) wantsPlanFlow(req TurnRequest) bool {
	if req.PlanFlowActive {
		return false
	}
	if strings.Contains(req.Text, contextMarker) {
		return true
	}
	lower := strings.ToLower(req.Text)
	for _, kw := range planKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// collectTurn does not call any AI provider. It answers with a prompt
// for the parameters still missing; the UI renders the plan form from
// the returned intent.
func (m *Manager) collectTurn(ctx context.Context, req TurnRequest, extracted models.TravelIntent) (*TurnResult, error) {
	assistant := models.Message{
		Role:      models.RoleAssistant,
		Content:   collectionPrompt(extracted),
		Timestamp: time.Now().UTC(),
		TripID:    req.TripID,
		UserID:    req.UserID,
	}
	if err := m.store.Append(ctx, assistant); err != nil {
		return nil, err
	}

	metrics.ConversationTurns.WithLabelValues(KindCollect).Inc()
	return &TurnResult{Kind: KindCollect, Message: assistant, Intent: extracted}, nil
}

func (m *Manager) chatTurn(ctx context.Context, req TurnRequest, history []models.Message, extracted models.TravelIntent) (*TurnResult, error) {
	// History already ends with the user message appended above; the
	// responder receives everything before it plus the new text.
	prior := history
	if len(prior) > 0 && prior[len(prior)-1].Role == models.RoleUser && prior[len(prior)-1].Content == req.Text {
		prior = prior[:len(prior)-1]
	}

	weather := m.lookupWeather(ctx, extracted)

	reply, err := m.responder.Respond(ctx, prior, req.Text, weather)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.ErrCodeChatGenerationFailed, "conversational reply failed", err)
	}

	reply.TripID = req.TripID
	reply.UserID = req.UserID
	if err := m.store.Append(ctx, *reply); err != nil {
		return nil, err
	}

	metrics.ConversationTurns.WithLabelValues(KindChat).Inc()
	return &TurnResult{Kind: KindChat, Message: *reply, Intent: extracted}, nil
}

// GeneratePlan runs the synthesizer once structured parameters are
// available, from the form or from extraction, and records the result
// in the conversation.
func (m *Manager) GeneratePlan(ctx context.Context, tripID, userID string, req synthesis.Request) (*models.TravelPlan, error) {
	plan, err := m.synthesizer.Synthesize(ctx, req)
	if err != nil {
		code := commonerrors.CodeOf(err)
		if code == commonerrors.ErrCodePlanSchemaInvalid || code == commonerrors.ErrCodePlanRangeInvalid || code == commonerrors.ErrCodeInvalidRequest {
			return nil, err
		}
		return nil, commonerrors.Wrap(commonerrors.ErrCodePlanGenerationFailed, "plan synthesis failed", err)
	}

	assistant := models.Message{
		Role:      models.RoleAssistant,
		Content:   planSummary(plan),
		Timestamp: time.Now().UTC(),
		TripID:    tripID,
		UserID:    userID,
	}
	if err := m.store.Append(ctx, assistant); err != nil {
		return nil, err
	}

	metrics.ConversationTurns.WithLabelValues(KindPlan).Inc()
	return plan, nil
}

// lookupWeather is best effort. A failed lookup never fails the turn.
func (m *Manager) lookupWeather(ctx context.Context, extracted models.TravelIntent) *models.Weather {
	if m.weather == nil || extracted.Destination == nil {
		return nil
	}
	weather, err := m.weather.Lookup(ctx, *extracted.Destination)
	if err != nil {
		m.logger.Warn("weather lookup failed, continuing without it", map[string]interface{}{
			"destination": *extracted.Destination,
			"error":       err.Error(),
		})
		return nil
	}
	return weather
}

func collectionPrompt(extracted models.TravelIntent) string {
	var missing []string
	if extracted.Destination == nil {
		missing = append(missing, "destination")
	}
	if extracted.DurationDays == nil {
		missing = append(missing, "trip length in days")
	}
	if extracted.BudgetAmount == nil {
		missing = append(missing, "budget")
	}

	if len(missing) == 0 {
		return "Great, I have everything I need. Review the details and confirm to generate your plan."
	}
	return fmt.Sprintf("I'd love to help plan your trip! To build an itinerary I still need your %s.", strings.Join(missing, ", "))
}

func planSummary(plan *models.TravelPlan) string {
	return fmt.Sprintf("I've put together a %d-day plan for %s with a $%.2f budget, leaving $%.2f remaining. Let me know if you'd like any changes!",
		plan.DurationDays, plan.Destination, plan.Budget, plan.RemainingBudget)
}
