// Package errors provides standardized error handling across all server protocols
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fredcamaral/gomcp-sdk/protocol"
)

// ErrorCode represents semantic error codes for consistent error handling
type ErrorCode string

const (
	// Authentication and authorization errors
	ErrorCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrorCodeInvalidAPIKey ErrorCode = "INVALID_API_KEY" //nolint:gosec // This is an error code, not credentials

	// Validation errors
	ErrorCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrorCodeRequiredField   ErrorCode = "REQUIRED_FIELD"
	ErrorCodeInvalidFormat   ErrorCode = "INVALID_FORMAT"
	ErrorCodeInvalidValue    ErrorCode = "INVALID_VALUE"

	// Resource resolution errors
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"
	ErrorCodeEmptyResult      ErrorCode = "EMPTY_RESULT"

	// Upstream Home Assistant errors
	ErrorCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"

	// Rate limiting errors
	ErrorCodeRateLimited ErrorCode = "RATE_LIMITED"

	// System and processing errors
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout            ErrorCode = "TIMEOUT"
	ErrorCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
)

// StandardError represents the unified error structure across all protocols
type StandardError struct {
	ErrorInfo ErrorDetails `json:"error"`
}

// Error implements the Go error interface
func (e *StandardError) Error() string {
	return e.ErrorInfo.Message
}

// ErrorDetails contains the detailed error information
type ErrorDetails struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Protocol string      `json:"protocol,omitempty"`
	TraceID  string      `json:"trace_id,omitempty"`
}

// ValidationDetail provides specific validation error information
type ValidationDetail struct {
	Field  string      `json:"field"`
	Reason string      `json:"reason"`
	Value  interface{} `json:"value,omitempty"`
}

// RateLimitDetail provides rate limiting error information
type RateLimitDetail struct {
	Limit      int           `json:"limit"`
	Window     string        `json:"window"`
	RetryAfter time.Duration `json:"retry_after"`
	Remaining  int           `json:"remaining"`
}

// NewStandardError creates a new standardized error
func NewStandardError(code ErrorCode, message string, details interface{}) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(field, reason string, value interface{}) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeValidationError,
			Message: fmt.Sprintf("Validation failed for field '%s': %s", field, reason),
			Details: ValidationDetail{
				Field:  field,
				Reason: reason,
				Value:  value,
			},
		},
	}
}

// NewRequiredFieldError creates an error for missing required fields
func NewRequiredFieldError(field string) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeRequiredField,
			Message: fmt.Sprintf("Required field '%s' is missing", field),
			Details: ValidationDetail{
				Field:  field,
				Reason: "missing_required_field",
			},
		},
	}
}

// NewUpstreamError creates an error for a failed Home Assistant API call
func NewUpstreamError(operation string, originalError error) *StandardError {
	details := map[string]interface{}{
		"operation": operation,
	}
	if originalError != nil {
		details["original_error"] = originalError.Error()
	}
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeUpstreamFailure,
			Message: fmt.Sprintf("Home Assistant request failed: %s", operation),
			Details: details,
		},
	}
}

// NewMalformedRequestError creates an error for an unroutable or invalid
// resource request
func NewMalformedRequestError(message string, details interface{}) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeMalformedRequest,
			Message: message,
			Details: details,
		},
	}
}

// NewEmptyResultError creates an error for a valid request that matched
// nothing, used where an empty answer is more misleading than an error
func NewEmptyResultError(message string, details interface{}) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeEmptyResult,
			Message: message,
			Details: details,
		},
	}
}

// NewNotFoundError creates an error for a missing entity
func NewNotFoundError(entityID string) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeNotFound,
			Message: fmt.Sprintf("Entity '%s' not found", entityID),
			Details: map[string]interface{}{
				"entity_id": entityID,
			},
		},
	}
}

// NewRateLimitError creates a rate limiting error
func NewRateLimitError(limit int, window string, retryAfter time.Duration, remaining int) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeRateLimited,
			Message: fmt.Sprintf("Rate limit exceeded: %d requests per %s", limit, window),
			Details: RateLimitDetail{
				Limit:      limit,
				Window:     window,
				RetryAfter: retryAfter,
				Remaining:  remaining,
			},
		},
	}
}

// NewUnauthorizedError creates an unauthorized access error
func NewUnauthorizedError(reason string) *StandardError {
	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeUnauthorized,
			Message: "Authentication required",
			Details: map[string]interface{}{
				"reason": reason,
			},
		},
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, originalError error) *StandardError {
	details := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if originalError != nil {
		details["original_error"] = originalError.Error()
	}

	return &StandardError{
		ErrorInfo: ErrorDetails{
			Code:    ErrorCodeInternalError,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error for debugging
func (e *StandardError) WithTraceID(traceID string) *StandardError {
	e.ErrorInfo.TraceID = traceID
	return e
}

// WithProtocol adds protocol information to the error
func (e *StandardError) WithProtocol(protocolName string) *StandardError {
	e.ErrorInfo.Protocol = protocolName
	return e
}

// ToJSONRPCError converts StandardError to JSON-RPC error format
func (e *StandardError) ToJSONRPCError(id interface{}) *protocol.JSONRPCResponse {
	// Map semantic error codes to JSON-RPC error codes
	var rpcCode int
	switch e.ErrorInfo.Code {
	case ErrorCodeValidationError, ErrorCodeRequiredField, ErrorCodeInvalidFormat, ErrorCodeInvalidValue, ErrorCodeMalformedRequest:
		rpcCode = -32602 // Invalid params
	case ErrorCodeNotFound, ErrorCodeEmptyResult:
		rpcCode = -32601 // Method not found (closest equivalent)
	case ErrorCodeInternalError, ErrorCodeDatabaseError:
		rpcCode = -32603 // Internal error
	case ErrorCodeUnauthorized, ErrorCodeForbidden, ErrorCodeInvalidAPIKey:
		rpcCode = -32000 // Server error (custom range)
	case ErrorCodeRateLimited:
		rpcCode = -32001 // Server error (custom range)
	case ErrorCodeServiceUnavailable, ErrorCodeTimeout, ErrorCodeUpstreamFailure:
		rpcCode = -32002 // Server error (custom range)
	default:
		rpcCode = -32603 // Internal error (fallback)
	}

	return &protocol.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &protocol.JSONRPCError{
			Code:    rpcCode,
			Message: e.ErrorInfo.Message,
			Data:    e,
		},
	}
}

// ToHTTPStatus maps StandardError to appropriate HTTP status code
func (e *StandardError) ToHTTPStatus() int {
	switch e.ErrorInfo.Code {
	case ErrorCodeUnauthorized, ErrorCodeInvalidAPIKey:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeValidationError, ErrorCodeRequiredField, ErrorCodeInvalidFormat, ErrorCodeInvalidValue, ErrorCodeMalformedRequest:
		return http.StatusBadRequest
	case ErrorCodeNotFound, ErrorCodeEmptyResult:
		return http.StatusNotFound
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeUpstreamFailure:
		return http.StatusBadGateway
	case ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case ErrorCodeInternalError, ErrorCodeDatabaseError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts StandardError to JSON bytes
func (e *StandardError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WriteHTTPError writes StandardError as HTTP response
func (e *StandardError) WriteHTTPError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")

	// Add trace ID header if present
	if e.ErrorInfo.TraceID != "" {
		w.Header().Set("X-Trace-ID", e.ErrorInfo.TraceID)
	}

	// Add rate limiting headers if applicable
	if e.ErrorInfo.Code == ErrorCodeRateLimited {
		if rateLimitDetail, ok := e.ErrorInfo.Details.(RateLimitDetail); ok {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rateLimitDetail.RetryAfter.Seconds()))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rateLimitDetail.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", rateLimitDetail.Remaining))
		}
	}

	w.WriteHeader(e.ToHTTPStatus())

	jsonBytes, _ := e.ToJSON()
	_, _ = w.Write(jsonBytes)
}

// Predefined common errors for convenience
var (
	ErrEntityIDRequired = NewRequiredFieldError("entity_id")
	ErrDomainRequired   = NewRequiredFieldError("domain")
	ErrQueryRequired    = NewRequiredFieldError("query")
	ErrServiceRequired  = NewRequiredFieldError("service")

	ErrUnauthorizedAccess = NewUnauthorizedError("authentication_required")
	ErrInvalidAPIKey      = NewStandardError(ErrorCodeInvalidAPIKey, "Invalid API key provided", nil)

	ErrInternalServer     = NewInternalError("Internal server error occurred", nil)
	ErrServiceUnavailable = NewStandardError(ErrorCodeServiceUnavailable, "Service temporarily unavailable", nil)
)

// IsValidationError checks if the error is a validation-related error
func IsValidationError(err *StandardError) bool {
	return err.ErrorInfo.Code == ErrorCodeValidationError ||
		err.ErrorInfo.Code == ErrorCodeRequiredField ||
		err.ErrorInfo.Code == ErrorCodeInvalidFormat ||
		err.ErrorInfo.Code == ErrorCodeInvalidValue ||
		err.ErrorInfo.Code == ErrorCodeMalformedRequest
}

func IsAuthenticationError(err *StandardError) bool {
	return err.ErrorInfo.Code == ErrorCodeUnauthorized ||
		err.ErrorInfo.Code == ErrorCodeForbidden ||
		err.ErrorInfo.Code == ErrorCodeInvalidAPIKey
}

func IsSystemError(err *StandardError) bool {
	return err.ErrorInfo.Code == ErrorCodeInternalError ||
		err.ErrorInfo.Code == ErrorCodeServiceUnavailable ||
		err.ErrorInfo.Code == ErrorCodeTimeout ||
		err.ErrorInfo.Code == ErrorCodeUpstreamFailure ||
		err.ErrorInfo.Code == ErrorCodeDatabaseError
}
