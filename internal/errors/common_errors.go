package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeProviderUnavailable ErrorType = "PROVIDER_UNAVAILABLE"
	ErrTypeEmptyDataset        ErrorType = "EMPTY_DATASET"
	ErrTypeEmptyFilterResult   ErrorType = "EMPTY_FILTER_RESULT"
	ErrTypeUnsupportedFormat   ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeExportFailed        ErrorType = "EXPORT_FAILED"
	ErrTypeValidation          ErrorType = "VALIDATION"
	ErrTypeConfig              ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the type of the first AppError in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// Helper functions for common error types

// NewProviderUnavailableError reports a live data source that could not serve data
func NewProviderUnavailableError(provider string, cause error) *AppError {
	return NewAppError(ErrTypeProviderUnavailable, fmt.Sprintf("provider %s unavailable", provider), cause).
		WithContext("provider", provider)
}

// NewEmptyDatasetError reports that no data source produced records
func NewEmptyDatasetError(attempted []string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, "no flight data available from any source", nil).
		WithContext("providers", strings.Join(attempted, ","))
}

// NewEmptyFilterResultError carries the guidance shown when filters remove every row
func NewEmptyFilterResultError(guidance []string) *AppError {
	return NewAppError(ErrTypeEmptyFilterResult, "no flights match the selected filters", nil).
		WithContext("guidance", guidance)
}

// NewUnsupportedFormatError reports an unknown export format
func NewUnsupportedFormatError(format string) *AppError {
	return NewAppError(ErrTypeUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format), nil).
		WithContext("format", format)
}

// NewExportFailedError wraps a serialization failure
func NewExportFailedError(format string, cause error) *AppError {
	return NewAppError(ErrTypeExportFailed, fmt.Sprintf("failed to export %s report", format), cause).
		WithContext("format", format)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
