package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"convoke/internal/domain"
)

// Error codes for API error responses. Domain error kinds are used verbatim
// as codes; these cover the transport-level failures.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// StatusForKind maps a domain error kind to its HTTP status code.
func StatusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindCapacityExceeded:
		return http.StatusConflict
	case domain.KindInvalidTransition, domain.KindPolicyViolation:
		return http.StatusUnprocessableEntity
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteDomainError writes the domain error carried by err with its mapped
// status and the kind as the error code. Returns false when err carries no
// domain error, in which case the caller handles it as an internal failure.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return false
	}
	WriteJSONError(w, StatusForKind(derr.Kind), string(derr.Kind), derr.Reason)
	return true
}
