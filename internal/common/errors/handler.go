// internal/common/errors/handler.go
package errors

import (
	"errors"
	"net/http"
	"time"
)

// ErrorHandler converts internal errors into HTTP responses with a
// standardized body.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the JSON body returned to clients on failure.
type ErrorResponse struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Respond normalizes err and returns the HTTP status plus response body.
func (h *ErrorHandler) Respond(err error) (int, ErrorResponse) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	return StatusCodeFor(stdErr.Code), ErrorResponse{
		Code:      stdErr.Code,
		Message:   stdErr.Message,
		Retryable: stdErr.Retryable,
		Metadata:  stdErr.Metadata,
		Timestamp: stdErr.Timestamp,
	}
}

// normalizeError ensures we always have a StandardError. Sentinel-wrapped
// errors keep their code.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	for sentinel, code := range sentinelCodes {
		if errors.Is(err, sentinel) {
			return Wrap(code, "request failed", err)
		}
	}

	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

var sentinelCodes = map[error]ErrorCode{
	ErrProviderTimeout:       ErrCodeProviderTimeout,
	ErrProviderHTTP:          ErrCodeProviderHTTP,
	ErrProviderEmptyResponse: ErrCodeProviderEmptyResponse,
	ErrPlanSchemaInvalid:     ErrCodePlanSchemaInvalid,
	ErrPlanRangeInvalid:      ErrCodePlanRangeInvalid,
	ErrHistoryAppendFailed:   ErrCodeHistoryAppendFailed,
	ErrHistoryFetchFailed:    ErrCodeHistoryFetchFailed,
	ErrWeatherLookupFailed:   ErrCodeWeatherLookupFailed,
}

// StatusCodeFor maps an error code to an HTTP status.
func StatusCodeFor(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeProviderTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeProviderHTTP,
		ErrCodeProviderEmptyResponse,
		ErrCodeAllProvidersExhausted,
		ErrCodePlanGenerationFailed,
		ErrCodeChatGenerationFailed:
		return http.StatusBadGateway
	case ErrCodePlanSchemaInvalid, ErrCodePlanRangeInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeHistoryAppendFailed,
		ErrCodeHistoryFetchFailed,
		ErrCodeDatabaseConnectionError:
		return http.StatusServiceUnavailable
	case ErrCodeWeatherLookupFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
