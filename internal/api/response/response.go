// Package response provides standardized HTTP response structures and
// utilities for the REST API layer.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"hass-mcp-server/internal/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error     ErrorDetails `json:"error"`
	Timestamp string       `json:"timestamp"`
	RequestID string       `json:"request_id,omitempty"`
}

// ErrorDetails contains detailed error information
type ErrorDetails struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details interface{}      `json:"details,omitempty"`
}

// SuccessResponse represents a standardized success response
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// WriteJSON writes a success envelope around data.
func WriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := SuccessResponse{
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// WriteError writes an error response with an explicit status and code.
func WriteError(w http.ResponseWriter, statusCode int, code errors.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:     ErrorDetails{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: w.Header().Get("X-Request-ID"),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// WriteStandardError maps a StandardError to its HTTP status and writes
// it. Other errors become a 502: everything the handlers call reaches
// upstream, so an untyped failure is an upstream failure.
func WriteStandardError(w http.ResponseWriter, err error) {
	if stdErr, ok := err.(*errors.StandardError); ok {
		WriteError(w, stdErr.ToHTTPStatus(), stdErr.ErrorInfo.Code, stdErr.ErrorInfo.Message)
		return
	}
	WriteError(w, http.StatusBadGateway, errors.ErrorCodeUpstreamFailure, err.Error())
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, errors.ErrorCodeUnauthorized, message)
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, errors.ErrorCodeMalformedRequest, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, errors.ErrorCodeNotFound, message)
}

// WriteRateLimited writes a 429 with a Retry-After header.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	WriteError(w, http.StatusTooManyRequests, errors.ErrorCodeRateLimited, "Rate limit exceeded")
}
