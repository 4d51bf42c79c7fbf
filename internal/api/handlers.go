// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-assistant/internal/ai/router"
	"travel-assistant/internal/ai/synthesis"
	commonerrors "travel-assistant/internal/common/errors"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/conversation"
	"travel-assistant/internal/models"
)

// turnManager is what the handlers need from the conversation layer.
type turnManager interface {
	HandleTurn(ctx context.Context, req conversation.TurnRequest) (*conversation.TurnResult, error)
	GeneratePlan(ctx context.Context, tripID, userID string, req synthesis.Request) (*models.TravelPlan, error)
}

type historyFetcher interface {
	Fetch(ctx context.Context, tripID string) ([]models.Message, error)
}

// Handler serves the trip conversation API.
type Handler struct {
	manager turnManager
	store   historyFetcher
	errors  *commonerrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(manager turnManager, store historyFetcher, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		manager: manager,
		store:   store,
		errors:  commonerrors.NewErrorHandler(log),
		logger:  log,
	}
}

type chatRequest struct {
	UserID         string `json:"userId" binding:"required"`
	Message        string `json:"message" binding:"required"`
	PlanFlowActive bool   `json:"planFlowActive"`
}

type planRequest struct {
	UserID       string   `json:"userId" binding:"required"`
	Destination  string   `json:"destination" binding:"required"`
	DurationDays int      `json:"durationDays" binding:"required"`
	Budget       float64  `json:"budget" binding:"required"`
	Interests    []string `json:"interests"`
	StartDate    string   `json:"startDate"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Chat handles one conversational turn for a trip.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, commonerrors.Wrap(commonerrors.ErrCodeInvalidRequest, "invalid chat request", err))
		return
	}

	result, err := h.manager.HandleTurn(c.Request.Context(), conversation.TurnRequest{
		TripID:         c.Param("tripId"),
		UserID:         req.UserID,
		Text:           req.Message,
		PlanFlowActive: req.PlanFlowActive,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Plan generates a structured travel plan from explicit parameters,
// typically submitted by the plan form.
func (h *Handler) Plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, commonerrors.Wrap(commonerrors.ErrCodeInvalidRequest, "invalid plan request", err))
		return
	}

	plan, err := h.manager.GeneratePlan(c.Request.Context(), c.Param("tripId"), req.UserID, synthesis.Request{
		Destination:  req.Destination,
		DurationDays: req.DurationDays,
		Budget:       req.Budget,
		Interests:    req.Interests,
		StartDate:    req.StartDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Messages returns a trip's conversation history in insertion order.
func (h *Handler) Messages(c *gin.Context) {
	messages, err := h.store.Fetch(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// respondError maps internal errors to an HTTP status and body. Provider
// exhaustion keeps its per-provider failure list so clients can show a
// meaningful retry prompt.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, body := h.errors.Respond(err)

	var exhausted *router.ExhaustedError
	if errors.As(err, &exhausted) {
		if body.Metadata == nil {
			body.Metadata = make(map[string]interface{})
		}
		body.Metadata["providerFailures"] = exhausted.Failures
	}

	c.JSON(status, body)
}
