package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeDuplicatePhone  = "DUPLICATE_PHONE"
	ErrCodeInvalidPhone    = "INVALID_PHONE_NUMBER"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeSlotUnavailable = "SLOT_UNAVAILABLE"
	ErrCodeGateway         = "GATEWAY_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewDuplicatePhoneError reports that a lead already exists for phone
func NewDuplicatePhoneError(phone string) error {
	return &DomainError{
		Code:    ErrCodeDuplicatePhone,
		Message: fmt.Sprintf("Phone number %s already registered", phone),
	}
}

// NewInvalidPhoneError carries the raw input that failed normalization
func NewInvalidPhoneError(input string) error {
	return &DomainError{
		Code:    ErrCodeInvalidPhone,
		Message: fmt.Sprintf("Invalid phone number: %s. Must be 10 or 11 digits.", input),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError is returned when a provider signature does not verify
func NewUnauthorizedError(msg string) error {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: msg,
	}
}

// NewSlotUnavailableError creates a booking conflict error
func NewSlotUnavailableError() error {
	return &DomainError{
		Code:    ErrCodeSlotUnavailable,
		Message: "Time slot no longer available",
	}
}

// NewGatewayError wraps a downstream provider failure
func NewGatewayError(provider string, err error) error {
	return &DomainError{
		Code:    ErrCodeGateway,
		Message: fmt.Sprintf("%s request failed", provider),
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// Helper functions to check error types

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsDuplicatePhone checks if the error is a duplicate phone error
func IsDuplicatePhone(err error) bool { return hasCode(err, ErrCodeDuplicatePhone) }

// IsInvalidPhone checks if the error is a phone normalization error
func IsInvalidPhone(err error) bool { return hasCode(err, ErrCodeInvalidPhone) }

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsUnauthorized checks if the error is an unauthorized error
func IsUnauthorized(err error) bool { return hasCode(err, ErrCodeUnauthorized) }

// IsSlotUnavailable checks if the error is a booking conflict
func IsSlotUnavailable(err error) bool { return hasCode(err, ErrCodeSlotUnavailable) }

// IsGateway checks if the error is a downstream provider failure
func IsGateway(err error) bool { return hasCode(err, ErrCodeGateway) }

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool { return hasCode(err, ErrCodeInternal) }

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// GetMessage returns the client-safe message of a domain error
func GetMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "An internal error occurred"
}
