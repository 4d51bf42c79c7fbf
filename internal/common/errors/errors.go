// internal/common/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode identifies a failure class across the service.
type ErrorCode string

const (
	// Provider failures
	ErrCodeProviderTimeout       ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderHTTP          ErrorCode = "PROVIDER_HTTP_ERROR"
	ErrCodeProviderEmptyResponse ErrorCode = "PROVIDER_EMPTY_RESPONSE"
	ErrCodeAllProvidersExhausted ErrorCode = "ALL_PROVIDERS_EXHAUSTED"

	// Plan synthesis failures
	ErrCodePlanSchemaInvalid    ErrorCode = "PLAN_SCHEMA_INVALID"
	ErrCodePlanRangeInvalid     ErrorCode = "PLAN_RANGE_INVALID"
	ErrCodePlanGenerationFailed ErrorCode = "PLAN_GENERATION_FAILED"
	ErrCodeChatGenerationFailed ErrorCode = "CHAT_GENERATION_FAILED"

	// Conversation persistence failures
	ErrCodeHistoryAppendFailed ErrorCode = "HISTORY_APPEND_FAILED"
	ErrCodeHistoryFetchFailed  ErrorCode = "HISTORY_FETCH_FAILED"

	// Supporting services
	ErrCodeWeatherLookupFailed     ErrorCode = "WEATHER_LOOKUP_FAILED"
	ErrCodeDatabaseConnectionError ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeInvalidRequest          ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// Sentinel errors for wrapping with %w. Callers match them with errors.Is.
var (
	ErrProviderTimeout       = errors.New(string(ErrCodeProviderTimeout))
	ErrProviderHTTP          = errors.New(string(ErrCodeProviderHTTP))
	ErrProviderEmptyResponse = errors.New(string(ErrCodeProviderEmptyResponse))
	ErrPlanSchemaInvalid     = errors.New(string(ErrCodePlanSchemaInvalid))
	ErrPlanRangeInvalid      = errors.New(string(ErrCodePlanRangeInvalid))
	ErrHistoryAppendFailed   = errors.New(string(ErrCodeHistoryAppendFailed))
	ErrHistoryFetchFailed    = errors.New(string(ErrCodeHistoryFetchFailed))
	ErrWeatherLookupFailed   = errors.New(string(ErrCodeWeatherLookupFailed))
)

// StandardError carries a code, a human-readable message, and whether a
// retry of the same request could succeed.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// New builds a StandardError with the retryability implied by its code.
func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: isRetryable(code),
		Timestamp: time.Now().UTC(),
	}
}

// Wrap builds a StandardError around a cause.
func Wrap(code ErrorCode, message string, cause error) *StandardError {
	e := New(code, message)
	if cause != nil {
		e.Details = cause.Error()
		e.cause = cause
	}
	return e
}

func isRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeProviderTimeout,
		ErrCodeProviderHTTP,
		ErrCodeProviderEmptyResponse,
		ErrCodeAllProvidersExhausted,
		ErrCodePlanGenerationFailed,
		ErrCodeChatGenerationFailed,
		ErrCodeHistoryAppendFailed,
		ErrCodeHistoryFetchFailed,
		ErrCodeWeatherLookupFailed,
		ErrCodeDatabaseConnectionError:
		return true
	default:
		return false
	}
}

// CodeOf extracts the error code from err, falling back to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
