package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates the email address is already registered.
	ErrEmailExists = errors.New("email address already registered")

	// ErrInvalidCredentials indicates a login attempt with a wrong email or
	// password. Deliberately does not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAlreadyAssigned indicates the user is already assigned to the task.
	ErrAlreadyAssigned = errors.New("user is already assigned to this task")

	// ErrTeamNotFound indicates the team does not exist.
	ErrTeamNotFound = errors.New("team not found")

	// ErrTagNotFound indicates the tag does not exist.
	ErrTagNotFound = errors.New("tag not found")

	// ErrTagNameExists indicates the tag name is already taken.
	ErrTagNameExists = errors.New("tag name already exists")

	// ErrTemplateNotFound indicates the template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateNameExists indicates the template name is already taken.
	ErrTemplateNameExists = errors.New("template name already exists")
)

// ServiceError wraps unexpected errors from a service with operation context.
type ServiceError struct {
	// Service is the service the error originated in (e.g. "task_service").
	Service string
	// Operation is the operation that failed (e.g. "create_task").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
