package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/middleware"
	"github.com/prohmpiriya/tienda-api/internal/service"
	pkgmiddleware "github.com/prohmpiriya/tienda-api/pkg/middleware"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to log in")
		return
	}

	response.Success(c, result)
}

// Verify reports the token owner and expiry
// GET /api/v1/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		handleError(c, err, "Failed to verify token")
		return
	}

	response.Success(c, dto.VerifyResponse{
		User:       *user,
		TokenValid: true,
		ExpiresAt:  claims.ExpiresAt,
	})
}

// Me returns the authenticated user's profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := pkgmiddleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to get user")
		return
	}

	response.Success(c, user)
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := pkgmiddleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		handleError(c, err, "Failed to change password")
		return
	}

	response.Success(c, gin.H{"message": "Password changed successfully"})
}

// Config exposes the lockout threshold, token lifetime and password policy
// GET /api/v1/auth/config
func (h *AuthHandler) Config(c *gin.Context) {
	response.Success(c, h.authService.AuthConfig(c.Request.Context()))
}

// Users lists every user without secrets. Only routed in development.
// GET /api/v1/auth/users
func (h *AuthHandler) Users(c *gin.Context) {
	result, err := h.userService.ListUsers(c.Request.Context(), nil)
	if err != nil {
		handleError(c, err, "Failed to list users")
		return
	}

	response.SuccessWithMeta(c, result.Users, gin.H{"count": result.Count})
}
