package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"confbooking/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
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

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode,
// and encodes an APIResponse with the given data and error set to nil.
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

// StatusForError maps a domain error to an HTTP status and API error code.
// Validation failures are 400, unknown identifiers 404, every illegal state
// transition or uniqueness/conflict/slot failure 409, anything else 500.
func StatusForError(err error) (int, string) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError, ErrCodeInternalError
	}
	switch derr.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest, ErrCodeBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case domain.KindDuplicate, domain.KindDuplicateBooking, domain.KindAlreadyCanceled,
		domain.KindAlreadyStarted, domain.KindNotWaitlisted, domain.KindConflict, domain.KindNoSlot:
		return http.StatusConflict, ErrCodeConflict
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
