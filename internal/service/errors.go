package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned when login credentials do not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive is returned when a disabled account attempts to log in
	ErrUserInactive = errors.New("user account is inactive")

	// ErrInvalidStage is returned when a production stage transition is not allowed
	ErrInvalidStage = errors.New("invalid production stage transition")

	// ErrInsufficientStock is returned when an OUT or LOSS movement exceeds stock
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNoActiveDemand is returned when progress is registered for a product
	// with nothing pending
	ErrNoActiveDemand = errors.New("no active demand for product")

	// ErrAlreadyReceived is returned when a dispatch reception is confirmed twice
	ErrAlreadyReceived = errors.New("dispatch already received")

	// ErrMirrorDisabled is returned when an ERP mirror query is attempted
	// without a configured mirror connection
	ErrMirrorDisabled = errors.New("erp mirror not configured")
)
