package constants

import "net/http"

// APIError represents a standardized API error with code, message, and HTTP status.
// Use these predefined errors for consistent gateway responses.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// WithMessage returns a copy of the APIError with a custom message.
// Useful for validation errors or other dynamic messages.
func (e APIError) WithMessage(message string) APIError {
	return APIError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
	}
}

// Common errors - shared across multiple handlers
var (
	ErrInvalidRequestBody = APIError{
		Code:    CodeInvalidRequest,
		Message: MsgInvalidRequestBody,
		Status:  http.StatusBadRequest,
	}
	ErrInternalError = APIError{
		Code:    CodeInternalError,
		Message: MsgInternalError,
		Status:  http.StatusInternalServerError,
	}
	ErrAPIKeyMissing = APIError{
		Code:    CodeAPIKeyMissing,
		Message: MsgAPIKeyMissing,
		Status:  http.StatusUnauthorized,
	}
	ErrAPIKeyInvalid = APIError{
		Code:    CodeAPIKeyInvalid,
		Message: MsgAPIKeyInvalid,
		Status:  http.StatusUnauthorized,
	}
	ErrRateLimited = APIError{
		Code:    CodeRateLimited,
		Message: MsgRateLimited,
		Status:  http.StatusTooManyRequests,
	}
)

// Remote store errors
var (
	ErrUpstreamTimeout = APIError{
		Code:    CodeUpstreamTimeout,
		Message: MsgRequestTimeout,
		Status:  http.StatusGatewayTimeout,
	}
	ErrUpstreamUnavailable = APIError{
		Code:    CodeUpstreamUnavailable,
		Message: MsgNetworkUnavailable,
		Status:  http.StatusBadGateway,
	}
	ErrUpstreamRejected = APIError{
		Code:    CodeUpstreamRejected,
		Message: MsgServerCommunication,
		Status:  http.StatusUnprocessableEntity,
	}
)

var (
	ErrInvalidLink = APIError{
		Code:    CodeInvalidLink,
		Message: MsgURLInvalid,
		Status:  http.StatusBadRequest,
	}
	ErrPermissionDenied = APIError{
		Code:    CodePermissionDenied,
		Message: MsgPermissionDenied,
		Status:  http.StatusForbidden,
	}
	ErrProfileNotFound = APIError{
		Code:    CodeProfileNotFound,
		Message: MsgProfileNotFound,
		Status:  http.StatusNotFound,
	}
)
