// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel-assistant/internal/ai/router"
	"travel-assistant/internal/ai/synthesis"
	"travel-assistant/internal/common/config"
	commonerrors "travel-assistant/internal/common/errors"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/conversation"
	"travel-assistant/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeManager struct {
	turnResult *conversation.TurnResult
	turnErr    error
	plan       *models.TravelPlan
	planErr    error
	gotTurn    conversation.TurnRequest
	gotPlanReq synthesis.Request
}

func (f *fakeManager) HandleTurn(ctx context.Context, req conversation.TurnRequest) (*conversation.TurnResult, error) {
	f.gotTurn = req
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	return f.turnResult, nil
}

func (f *fakeManager) GeneratePlan(ctx context.Context, tripID, userID string, req synthesis.Request) (*models.TravelPlan, error) {
	f.gotPlanReq = req
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.plan, nil
}

type fakeFetcher struct {
	messages []models.Message
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, tripID string) ([]models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func newTestServer(t *testing.T, manager *fakeManager, fetcher *fakeFetcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(manager, fetcher, logger.NewTestLogger(t))
	return NewRouter(&config.Config{}, h, logger.NewTestLogger(t))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==========================
// Core Functionality Tests
// ==========================

func TestChat_Success(t *testing.T) {
	manager := &fakeManager{turnResult: &conversation.TurnResult{
		Kind:    conversation.KindChat,
		Message: models.Message{Role: models.RoleAssistant, Content: "hello traveler"},
	}}
	r := newTestServer(t, manager, &fakeFetcher{})

	w := doJSON(t, r, http.MethodPost, "/api/trips/trip-1/chat", map[string]interface{}{
		"userId":  "user-1",
		"message": "What's the weather like?",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trip-1", manager.gotTurn.TripID)
	assert.Equal(t, "user-1", manager.gotTurn.UserID)

	var result conversation.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, conversation.KindChat, result.Kind)
	assert.Equal(t, "hello traveler", result.Message.Content)
}

func TestChat_PassesPlanFlowFlag(t *testing.T) {
	manager := &fakeManager{turnResult: &conversation.TurnResult{Kind: conversation.KindChat}}
	r := newTestServer(t, manager, &fakeFetcher{})

	w := doJSON(t, r, http.MethodPost, "/api/trips/trip-1/chat", map[string]interface{}{
		"userId":         "user-1",
		"message":        "adjust the trip",
		"planFlowActive": true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, manager.gotTurn.PlanFlowActive)
}

func TestPlan_Success(t *testing.T) {
	manager := &fakeManager{plan: &models.TravelPlan{
		Destination: "Paris", DurationDays: 3, Budget: 1500, RemainingBudget: 990,
	}}
	r := newTestServer(t, manager, &fakeFetcher{})

	w := doJSON(t, r, http.MethodPost, "/api/trips/trip-1/plan", map[string]interface{}{
		"userId":       "user-1",
		"destination":  "Paris",
		"durationDays": 3,
		"budget":       1500,
		"interests":    []string{"museums", "food"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paris", manager.gotPlanReq.Destination)
	assert.Equal(t, 3, manager.gotPlanReq.DurationDays)

	var plan models.TravelPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, 990.0, plan.RemainingBudget)
}

func TestMessages_ReturnsHistory(t *testing.T) {
	fetcher := &fakeFetcher{messages: []models.Message{
		{Role: models.RoleUser, Content: "hi", TripID: "trip-1"},
		{Role: models.RoleAssistant, Content: "hello!", TripID: "trip-1"},
	}}
	r := newTestServer(t, &fakeManager{}, fetcher)

	w := doJSON(t, r, http.MethodGet, "/api/trips/trip-1/messages", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, &fakeManager{}, &fakeFetcher{})

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// ==========================
// Error Handling Tests
// ==========================

func TestChat_MissingFields(t *testing.T) {
	r := newTestServer(t, &fakeManager{}, &fakeFetcher{})

	w := doJSON(t, r, http.MethodPost, "/api/trips/trip-1/chat", map[string]interface{}{
		"userId": "user-1",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body commonerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, commonerrors.ErrCodeInvalidRequest, body.Code)
}

func TestPlan_FailureCodesAreDistinguishable(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   commonerrors.ErrorCode
	}{
		{
			name: "provider exhaustion during plan",
			err: commonerrors.Wrap(commonerrors.ErrCodePlanGenerationFailed, "plan synthesis failed",
				&router.ExhaustedError{Failures: []router.ProviderFailure{
					{Provider: "openai", Reason: "timeout"},
					{Provider: "gemini", Reason: "http 500"},
				}}),
			wantStatus: http.StatusBadGateway,
			wantCode:   commonerrors.ErrCodePlanGenerationFailed,
		},
		{
			name:       "schema violation",
			err:        commonerrors.New(commonerrors.ErrCodePlanSchemaInvalid, "missing destination"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   commonerrors.ErrCodePlanSchemaInvalid,
		},
		{
			name:       "range violation",
			err:        commonerrors.New(commonerrors.ErrCodePlanRangeInvalid, "rating out of range"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   commonerrors.ErrCodePlanRangeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestServer(t, &fakeManager{planErr: tt.err}, &fakeFetcher{})

			w := doJSON(t, r, http.MethodPost, "/api/trips/trip-1/plan", map[string]interface{}{
				"userId": "user-1", "destination": "Paris", "durationDays": 3, "budget": 1500,
			})

			require.Equal(t, tt.wantStatus, w.Code)
			var body commonerrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestChat_ExhaustionCarriesProviderFailures(t *testing.T) {
	manager := &fakeManager{
		turnErr: commonerrors.Wrap(commonerrors.ErrCodeChatGenerationFailed, "conversational reply failed",
			&router.ExhaustedError{Failures: []router.ProviderFailure{
				{Provider: "openai", Reason: "timeout"},
				{Provider: "gemini", Reason: "empty content"},
			}}),
	}
	r := newTestServer(t, manager, &fakeFetcher{})

	w := doJSON(t, r, http.MethodPost, "/api/trips/trip-1/chat", map[string]interface{}{
		"userId": "user-1", "message": "hi",
	})

	require.Equal(t, http.StatusBadGateway, w.Code)
	var body commonerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, commonerrors.ErrCodeChatGenerationFailed, body.Code)

	failures, ok := body.Metadata["providerFailures"].([]interface{})
	require.True(t, ok)
	assert.Len(t, failures, 2)
}

func TestMessages_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: commonerrors.ErrHistoryFetchFailed}
	r := newTestServer(t, &fakeManager{}, fetcher)

	w := doJSON(t, r, http.MethodGet, "/api/trips/trip-1/messages", nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
