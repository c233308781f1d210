package services

import (
	"errors"
	"fmt"

	"github.com/peritasorg/eventis-sub000/internal/pricing"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
)

// Error handling types and constants
type ErrorCode string

const (
	ErrInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrNotFound            ErrorCode = "NOT_FOUND"
	ErrConflict            ErrorCode = "CONFLICT"
	ErrRiskNotAcknowledged ErrorCode = "RISK_NOT_ACKNOWLEDGED"
	ErrNoTimeWindow        ErrorCode = "NO_TIME_WINDOW"
	ErrCalendarSyncFailed  ErrorCode = "CALENDAR_SYNC_FAILED"
	ErrDatabaseError       ErrorCode = "DATABASE_ERROR"
	ErrPermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
)

type ServiceError struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
	Details error     `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s [%s]", e.Message, e.Code)
}

func (e *ServiceError) Unwrap() error {
	return e.Details
}

func NewServiceError(message string, code ErrorCode, details error) *ServiceError {
	return &ServiceError{
		Message: message,
		Code:    code,
		Details: details,
	}
}

// AsServiceError returns the ServiceError in err's chain, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode reports whether err is a ServiceError with the given code.
func HasCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}

func invalid(message string) *ServiceError {
	return NewServiceError(message, ErrInvalidInput, nil)
}

// lookupError turns a repository lookup failure into NOT_FOUND or DATABASE_ERROR.
func lookupError(what string, err error) *ServiceError {
	if errors.Is(err, repositories.ErrNotFound) {
		return NewServiceError(what+" not found", ErrNotFound, err)
	}
	return NewServiceError("failed to load "+what, ErrDatabaseError, err)
}

func dbError(message string, err error) *ServiceError {
	return NewServiceError(message, ErrDatabaseError, err)
}

// amountError reports a rejected user-typed amount as INVALID_INPUT.
func amountError(field string, err error) *ServiceError {
	if errors.Is(err, pricing.ErrAmountTooLarge) {
		return NewServiceError(field+" is too large", ErrInvalidInput, err)
	}
	return NewServiceError(field+" must be a number", ErrInvalidInput, err)
}
