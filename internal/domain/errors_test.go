package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewValidationError([]string{"x"}), "VALIDATION_ERROR"},
		{&PolicyViolationError{Violations: []string{"x"}}, "POLICY_VIOLATION"},
		{ErrProductNotFound, "NOT_FOUND"},
		{fmt.Errorf("lookup: %w", ErrUserNotFound), "NOT_FOUND"},
		{ErrEmailTaken, "CONFLICT"},
		{&KindError{Kind: ErrInsufficientStock, Msg: "no"}, "INSUFFICIENT_STOCK"},
		{ErrInvalidCredentials, "INVALID_CREDENTIALS"},
		{ErrAccountLocked, "ACCOUNT_LOCKED"},
		{ErrAccountInactive, "ACCOUNT_INACTIVE"},
		{ErrTokenExpired, "TOKEN_EXPIRED"},
		{fmt.Errorf("verify: %w", ErrInvalidToken), "INVALID_TOKEN"},
		{errors.New("boom"), "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestAuthenticationReasonsShareKind(t *testing.T) {
	for _, err := range []error{ErrInvalidCredentials, ErrAccountLocked, ErrAccountInactive, ErrInvalidToken, ErrTokenExpired} {
		if !errors.Is(err, ErrAuthentication) {
			t.Errorf("%v does not match ErrAuthentication", err)
		}
	}
}

func TestNewValidationError_Empty(t *testing.T) {
	if err := NewValidationError(nil); err != nil {
		t.Errorf("NewValidationError(nil) = %v, want nil", err)
	}
}
