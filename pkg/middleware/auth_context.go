package middleware

import "github.com/gin-gonic/gin"

// Context keys set by the authentication middleware
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
)

// GetUserID returns the authenticated user ID from context
func GetUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

// GetRole returns the authenticated user's role from context
func GetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

// GetUsername returns the authenticated username from context
func GetUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUsername)
	if !exists {
		return "", false
	}
	username, ok := v.(string)
	return username, ok
}
