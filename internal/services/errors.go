// Package services holds the logic between the HTTP/queue edges and the
// analyzers: reading ingestion, batch fetching and the periodic monitor.
package services

import "fmt"

// Error codes returned in ServiceError.Code
const (
	CodeMissingFields    = "MISSING_FIELDS"
	CodeInvalidReading   = "INVALID_READING"
	CodeUnknownSensor    = "UNKNOWN_SENSOR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeNoSnapshot       = "NO_SNAPSHOT"
	CodeInvalidParameter = "INVALID_PARAMETER"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// wrapStoreError reports a failed store call without leaking driver text into Message
func wrapStoreError(err error) *ServiceError {
	return &ServiceError{
		Code:    CodeStoreUnavailable,
		Message: "Database error",
		cause:   err,
	}
}
