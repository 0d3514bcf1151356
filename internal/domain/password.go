package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// PasswordTooLongMessage is the violation reported for inputs over MaxPasswordBytes
var PasswordTooLongMessage = fmt.Sprintf("password cannot exceed %d bytes", MaxPasswordBytes)

// PasswordPolicy is the set of rules a new password must satisfy
type PasswordPolicy struct {
	MinLength        int  `json:"minLength"`
	RequireUppercase bool `json:"requireUppercase"`
	RequireLowercase bool `json:"requireLowercase"`
	RequireNumbers   bool `json:"requireNumbers"`
	RequireSpecial   bool `json:"requireSpecialChars"`
}

// DefaultPasswordPolicy only enforces the minimum length
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 6}
}

// Check returns every rule the password fails
func (p PasswordPolicy) Check(password string) []string {
	var violations []string

	if utf8.RuneCountInString(password) < p.MinLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if len(password) > MaxPasswordBytes {
		violations = append(violations, PasswordTooLongMessage)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if p.RequireUppercase && !hasUpper {
		violations = append(violations, "password must contain an uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		violations = append(violations, "password must contain a lowercase letter")
	}
	if p.RequireNumbers && !hasNumber {
		violations = append(violations, "password must contain a number")
	}
	if p.RequireSpecial && !hasSpecial {
		violations = append(violations, "password must contain a special character")
	}

	return violations
}

// Validate returns a PolicyViolationError when the password fails any rule
func (p PasswordPolicy) Validate(password string) error {
	if v := p.Check(password); len(v) > 0 {
		return &PolicyViolationError{Violations: v}
	}
	return nil
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for an out-of-range cost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare is constant-time in the password
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
