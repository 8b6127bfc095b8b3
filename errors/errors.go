package errors

import (
	"fmt"
	"net/http"

	"github.com/NomadCrew/feedback-backend/logger"
)

type ErrorType string

const (
	ValidationError    ErrorType = "VALIDATION_ERROR"
	NotFoundError      ErrorType = "NOT_FOUND"
	StorageError       ErrorType = "STORAGE_UNAVAILABLE"
	ServerError        ErrorType = "SERVER_ERROR"
	MethodError        ErrorType = "METHOD_NOT_ALLOWED"
	RateLimitError     ErrorType = "RATE_LIMIT_EXCEEDED"
	ErrorTypeMissing             = "missing_fields"
	ErrorTypeEmail               = "invalid_email"
	ErrorTypeRating              = "invalid_rating"
	ErrorTypeBadPayload          = "invalid_request_payload"
)

// AppError is the structured error rendered at the HTTP boundary. Message becomes
// the response's "error" field, Fields its "details" object and Detail its
// best-effort "message".
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"-"`
	Message    string                 `json:"error"`
	Detail     string                 `json:"message,omitempty"`
	Fields     map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Raw        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the response status for the error, defaulting by type.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(message string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(code string, message string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// MissingFields reports required submission fields. fields maps every checked
// field to its problem, or nil when the field was present.
func MissingFields(fields map[string]interface{}) *AppError {
	err := ValidationFailed(ErrorTypeMissing, "Missing required fields")
	err.Fields = fields
	return err
}

func InvalidEmail() *AppError {
	return ValidationFailed(ErrorTypeEmail, "Invalid email format")
}

func InvalidRating() *AppError {
	return ValidationFailed(ErrorTypeRating, "Rating must be a number between 1 and 5")
}

func StorageUnavailable(err error) *AppError {
	logger.GetLogger().Errorw("Storage unavailable", "error", err)
	return &AppError{
		Type:       StorageError,
		Message:    "Failed to initialize storage",
		Detail:     errDetail(err),
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string, err error) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    "Internal server error",
		Detail:     message,
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func MethodNotAllowed() *AppError {
	return &AppError{
		Type:       MethodError,
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case MethodError:
		return http.StatusMethodNotAllowed
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
