package dto

import (
	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/repository"
)

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Username    string              `json:"username" binding:"required"`
	Email       string              `json:"email" binding:"required"`
	Password    string              `json:"password" binding:"required"`
	Role        string              `json:"role"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	Preferences *domain.Preferences `json:"preferences"`
}

// ToInput converts the request into a user input
func (r *CreateUserRequest) ToInput() domain.UserInput {
	return domain.UserInput{
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		Role:        r.Role,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Preferences: r.Preferences,
	}
}

// UpdateUserRequest represents a partial user update. Username and
// password cannot be changed here.
type UpdateUserRequest struct {
	Email       *string             `json:"email"`
	FirstName   *string             `json:"firstName"`
	LastName    *string             `json:"lastName"`
	Role        *string             `json:"role"`
	IsActive    *bool               `json:"isActive"`
	Preferences *domain.Preferences `json:"preferences"`
}

// ToPatch converts the request into a domain patch
func (r *UpdateUserRequest) ToPatch() *domain.UserPatch {
	return &domain.UserPatch{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Role:        r.Role,
		IsActive:    r.IsActive,
		Preferences: r.Preferences,
	}
}

// UserListFilter represents query parameters for listing users
type UserListFilter struct {
	Role     string `form:"role"`
	IsActive *bool  `form:"isActive"`
	IsLocked *bool  `form:"isLocked"`
	Search   string `form:"search"`
	SortBy   string `form:"sortBy"`
}

// ToRepositoryFilter converts the query parameters into a repository filter
func (f *UserListFilter) ToRepositoryFilter() *repository.UserFilter {
	if f == nil {
		return nil
	}
	return &repository.UserFilter{
		Role:     f.Role,
		IsActive: f.IsActive,
		IsLocked: f.IsLocked,
		Search:   f.Search,
		SortBy:   f.SortBy,
	}
}

// UserListResponse represents a user listing
type UserListResponse struct {
	Users []domain.PublicUser `json:"users"`
	Count int                 `json:"count"`
}
