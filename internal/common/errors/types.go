package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeConfig represents configuration errors; these are the only
	// errors that surface to callers, and only during initialization or
	// registration.
	ErrTypeConfig ErrorType = "config"
	// ErrTypeTransient represents a single level's operation failure
	// (timeout, connection loss, breaker open). Absorbed into miss/false
	// returns, never propagated.
	ErrTypeTransient ErrorType = "transient_level"
	// ErrTypeSerialization represents payload encode/decode failures
	ErrTypeSerialization ErrorType = "serialization"
	// ErrTypeInvalidationRule represents references to unregistered
	// invalidation rules
	ErrTypeInvalidationRule ErrorType = "invalidation_rule"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
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

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// TransientError creates a new transient level error. The level and
// operation names are carried in the error context for structured logs.
func TransientError(level, operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeTransient,
		Message: fmt.Sprintf("%s %s failed", level, operation),
		Cause:   cause,
		Context: map[string]interface{}{
			"level":     level,
			"operation": operation,
		},
	}
}

// SerializationError creates a new serialization error
func SerializationError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeSerialization,
		Message: msg,
		Cause:   cause,
	}
}

// UnknownRuleError creates an error for an unregistered invalidation rule
func UnknownRuleError(rule string) *AppError {
	return &AppError{
		Type:    ErrTypeInvalidationRule,
		Message: fmt.Sprintf("invalidation rule %q is not registered", rule),
		Context: map[string]interface{}{
			"rule": rule,
		},
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return ErrTypeInternal
	}

	return appErr.Type
}
