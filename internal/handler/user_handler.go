package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

// UserHandler handles user directory HTTP requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	var filter dto.UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err, "Failed to list users")
		return
	}

	response.SuccessWithMeta(c, result.Users, gin.H{"count": result.Count})
}

// GetByID handles GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Failed to get user")
		return
	}

	response.Success(c, user)
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err, "Failed to create user")
		return
	}

	response.Created(c, user)
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err, "Failed to update user")
		return
	}

	response.Success(c, user)
}

// Delete handles DELETE /users/:id - deactivates, users are never removed
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeactivateUser(c.Request.Context(), id); err != nil {
		handleError(c, err, "Failed to deactivate user")
		return
	}

	response.Success(c, gin.H{"id": id, "isActive": false})
}

// Unlock handles POST /users/:id/unlock
func (h *UserHandler) Unlock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.UnlockUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "Failed to unlock user")
		return
	}

	response.Success(c, user)
}

// Statistics handles GET /users/statistics
func (h *UserHandler) Statistics(c *gin.Context) {
	response.Success(c, h.userService.GetStatistics(c.Request.Context()))
}

// Roles handles GET /users/roles
func (h *UserHandler) Roles(c *gin.Context) {
	response.Success(c, h.userService.ListRoles(c.Request.Context()))
}
