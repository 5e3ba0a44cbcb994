// Package shared contains common domain types, errors and events used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors for checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")
	ErrInvalidFormat = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "user", "task", "gamification"
	Op      string // operation that failed, e.g. "Complete"
	Kind    error  // base error type for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against both Kind and Err.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidTelegramID = NewDomainError("user", "Validate", ErrInvalidID, "invalid Telegram ID")
)

// Task domain errors
var (
	ErrTaskNotFound = NewDomainError("task", "Find", ErrNotFound, "task not found")
	// ErrTaskAlreadyCompleted guards the complete operation: a second
	// completion is reported distinctly and mutates nothing.
	ErrTaskAlreadyCompleted = NewDomainError("task", "Complete", ErrAlreadyProcessed, "task already completed")
	ErrTaskNotActive        = NewDomainError("task", "Complete", ErrInvalidState, "task is not active")
	ErrCategoryNotFound     = NewDomainError("task", "FindCategory", ErrNotFound, "category not found")
	ErrEmptyTaskTitle       = NewDomainError("task", "Validate", ErrEmptyValue, "task title cannot be empty")
)

// Gamification domain errors
var (
	ErrAchievementNotFound = NewDomainError("gamification", "Find", ErrNotFound, "achievement not found")
	// ErrMalformedCondition is recorded on catalog entries whose payload
	// cannot be parsed. Evaluation treats such entries as never satisfied;
	// this error never surfaces from a completion.
	ErrMalformedCondition = NewDomainError("gamification", "ParseCondition", ErrInvalidFormat, "malformed achievement condition payload")
)
