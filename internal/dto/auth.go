package dto

import (
	"time"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

// LoginRequest represents the login request. Username accepts either the
// username or the email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token     string            `json:"token"`
	TokenType string            `json:"tokenType"`
	ExpiresAt time.Time         `json:"expiresAt"`
	ExpiresIn int64             `json:"expiresIn"`
	User      domain.PublicUser `json:"user"`
}

// ChangePasswordRequest represents a password change by the account owner
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// VerifyResponse represents the result of a token check
type VerifyResponse struct {
	User       domain.PublicUser `json:"user"`
	TokenValid bool              `json:"tokenValid"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

// AuthConfigResponse exposes the public authentication settings
type AuthConfigResponse struct {
	MaxLoginAttempts int                   `json:"maxLoginAttempts"`
	TokenTTLSeconds  int64                 `json:"tokenTtlSeconds"`
	PasswordPolicy   domain.PasswordPolicy `json:"passwordPolicy"`
	Roles            []string              `json:"roles"`
}
