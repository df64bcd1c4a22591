package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeBusiness   ErrorType = "business"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeDegraded   ErrorType = "degraded_data"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy of the error carrying the given details.
// The receiver is left untouched so chaining off a shared sentinel is safe.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	out := *e
	out.Details = details
	return &out
}

// WithCause returns a copy of the error wrapping cause. The receiver is
// left untouched so chaining off a shared sentinel is safe.
func (e *AppError) WithCause(cause error) *AppError {
	out := *e
	out.Cause = cause
	return &out
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewBusinessError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeBusiness,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// NewDegradedDataError marks results computed from incomplete or substituted
// telemetry. Callers must treat these as "unknown", never as "clean".
func NewDegradedDataError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDegraded,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 200,
	}
}

// Predefined common errors
var (
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrSeriesNotFound      = NewNotFoundError("driver series")
	ErrEmptySeries         = NewValidationError("EMPTY_SERIES", "Driver series contains no samples")
	ErrUnparseableTime     = NewValidationError("UNPARSEABLE_TIME", "Incident time could not be parsed")
	ErrInsufficientWindow  = NewDegradedDataError("INSUFFICIENT_WINDOW_DATA", "Limited data available in the timeframe around the incident")
	ErrClassifierDisabled  = NewBusinessError("CLASSIFIER_DISABLED", "Statistical classifier is not available")
	ErrMalformedAssessment = NewValidationError("MALFORMED_ASSESSMENT", "Damage assessment is malformed")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
