package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests that fail domain validation beyond struct tags.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSelfReview is returned when a student attempts to review themselves.
	ErrSelfReview = fmt.Errorf("%w: cannot review yourself", ErrInvalidInput)
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the caller's role or ownership does not permit the operation.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrEmailTaken indicates a registration for an email that already exists.
	ErrEmailTaken = errors.New("email already exists")

	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrAlertNotFound   = errors.New("alert not found")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
