// Package response provides the JSON envelope used by every API endpoint:
// a data field on success and an error field on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/dnmerge/pkg/errors"
)

// Error codes returned in the error envelope.
const (
	CodeMissingKeyColumn = "MISSING_KEY_COLUMN"
	CodeUnreadableInput  = "UNREADABLE_INPUT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeCanceled         = "REQUEST_CANCELED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// Response is the API response envelope.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes resp with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail(CodeBadRequest, message, details))
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusUnauthorized, Fail(CodeUnauthorized, message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail(CodeNotFound, message, details))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		CodeMethodNotAllowed,
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// TooLarge writes a 413 error response.
func TooLarge(w http.ResponseWriter, details string) {
	JSON(w, http.StatusRequestEntityTooLarge, Fail(CodeTooLarge, "Upload too large", details))
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, details string) {
	JSON(w, http.StatusTooManyRequests, Fail(CodeRateLimited, "Rate limit exceeded", details))
}

// InternalError writes a 500 error response. The cause is not exposed.
func InternalError(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, Fail(
		CodeInternal,
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, details string) {
	JSON(w, http.StatusServiceUnavailable, Fail(CodeUnavailable, "Service unavailable", details))
}

// Classify maps a run error to its HTTP status and error code.
// A missing key column wins over other failures joined with it.
func Classify(err error) (int, string) {
	switch {
	case errors.IsMissingKeyColumn(err):
		return http.StatusUnprocessableEntity, CodeMissingKeyColumn
	case errors.IsUnreadableInput(err):
		return http.StatusBadRequest, CodeUnreadableInput
	case errors.IsValidationError(err):
		return http.StatusBadRequest, CodeBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case errors.IsCanceled(err):
		return http.StatusRequestTimeout, CodeCanceled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// ErrorFromType writes the error response matching err.
func ErrorFromType(w http.ResponseWriter, err error) {
	status, code := Classify(err)
	switch code {
	case CodeInternal:
		InternalError(w)
	case CodeMissingKeyColumn:
		JSON(w, status, Fail(code, "Missing key column", err.Error()))
	case CodeUnreadableInput:
		JSON(w, status, Fail(code, "Unreadable input", err.Error()))
	case CodeNotFound:
		NotFound(w, "Not found", err.Error())
	default:
		JSON(w, status, Fail(code, err.Error(), ""))
	}
}
