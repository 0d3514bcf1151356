package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/tienda-api/internal/domain"
	pkgmiddleware "github.com/prohmpiriya/tienda-api/pkg/middleware"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

// ContextKeyClaims holds the full token claims
const ContextKeyClaims = "claims"

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// PermissionChecker answers role permission questions
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int, permission string) bool
}

// Auth validates the bearer token and sets the user in context
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody("MISSING_TOKEN", "Authorization header is required"))
			return
		}

		// Extract token from "Bearer <token>"
		const bearerPrefix = "Bearer "
		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody("INVALID_TOKEN", "Invalid authorization header format"))
			return
		}
		token := authHeader[len(bearerPrefix):]

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrAuthentication) {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					response.ErrorBody("INTERNAL_ERROR", "Failed to validate token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody(domain.ErrorCode(err), tokenErrorMessage(err)))
			return
		}

		c.Set(pkgmiddleware.ContextKeyUserID, claims.UserID)
		c.Set(pkgmiddleware.ContextKeyUsername, claims.Username)
		c.Set(pkgmiddleware.ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, domain.ErrAccountInactive):
		return "User account is inactive"
	default:
		return "Invalid or expired token"
	}
}

// RequirePermission rejects authenticated users whose role lacks permission.
// It must run after Auth.
func RequirePermission(checker PermissionChecker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pkgmiddleware.GetUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody("UNAUTHORIZED", "User not authenticated"))
			return
		}

		if !checker.HasPermission(c.Request.Context(), userID, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.ErrorBody("INSUFFICIENT_PERMISSIONS", "Missing permission: "+permission))
			return
		}

		c.Next()
	}
}

// GetClaims returns the token claims set by Auth
func GetClaims(c *gin.Context) (*domain.Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok
}
