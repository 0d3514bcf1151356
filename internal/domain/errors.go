package domain

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by the repositories and services matches
// exactly one of these with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPolicyViolation   = errors.New("password policy violation")
	ErrAuthentication    = errors.New("authentication failed")
)

// Specific errors
var (
	ErrProductNotFound = &KindError{Kind: ErrNotFound, Msg: "product not found"}
	ErrUserNotFound    = &KindError{Kind: ErrNotFound, Msg: "user not found"}
	ErrRoleNotFound    = &KindError{Kind: ErrNotFound, Msg: "role not found"}

	ErrUsernameTaken = &KindError{Kind: ErrConflict, Msg: "username already exists"}
	ErrEmailTaken    = &KindError{Kind: ErrConflict, Msg: "email already exists"}

	ErrInvalidCredentials = &KindError{Kind: ErrAuthentication, Msg: "invalid credentials"}
	ErrAccountLocked      = &KindError{Kind: ErrAuthentication, Msg: "account locked due to too many failed login attempts"}
	ErrAccountInactive    = &KindError{Kind: ErrAuthentication, Msg: "account is deactivated"}
	ErrInvalidToken       = &KindError{Kind: ErrAuthentication, Msg: "invalid token"}
	ErrTokenExpired       = &KindError{Kind: ErrAuthentication, Msg: "token expired"}
)

// KindError is a message tagged with one of the error kinds
type KindError struct {
	Kind error
	Msg  string
}

func (e *KindError) Error() string { return e.Msg }
func (e *KindError) Unwrap() error { return e.Kind }

// ValidationError lists every violated rule, not just the first
type ValidationError struct {
	Violations []string
}

// NewValidationError returns nil when there are no violations
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return "invalid data: " + strings.Join(e.Violations, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PolicyViolationError lists the password policy rules a candidate failed
type PolicyViolationError struct {
	Violations []string
}

func (e *PolicyViolationError) Error() string {
	return "password does not meet requirements: " + strings.Join(e.Violations, ", ")
}

func (e *PolicyViolationError) Unwrap() error { return ErrPolicyViolation }

// Violations extracts the rule list from a validation or policy error
func Violations(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	var pe *PolicyViolationError
	if errors.As(err, &pe) {
		return pe.Violations
	}
	return nil
}

// ErrorCode maps an error to its stable machine-readable code
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountLocked):
		return "ACCOUNT_LOCKED"
	case errors.Is(err, ErrAccountInactive):
		return "ACCOUNT_INACTIVE"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case errors.Is(err, ErrAuthentication):
		return "AUTHENTICATION_FAILED"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrPolicyViolation):
		return "POLICY_VIOLATION"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	default:
		return "INTERNAL_ERROR"
	}
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflictError checks if error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
