package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/query"
)

// Clock returns the current time. Repositories take one so tests can pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	// List runs a filter over active products; the result is paginated only
	// when the filter carries both page and limit
	List(ctx context.Context, filter *ProductFilter) (*ProductList, error)
	// GetByID retrieves an active product
	GetByID(ctx context.Context, id int) (*domain.PublicProduct, error)
	// Create validates and stores a new product with the next id
	Create(ctx context.Context, attrs domain.ProductAttributes) (*domain.PublicProduct, error)
	// Update applies a partial update to an active product
	Update(ctx context.Context, id int, patch *domain.ProductPatch) (*domain.PublicProduct, error)
	// SoftDelete deactivates an active product
	SoftDelete(ctx context.Context, id int) bool
	// AdjustStock adds delta units; a negative delta may not drive stock below zero
	AdjustStock(ctx context.Context, id int, delta int) (*domain.PublicProduct, error)
	// Search matches title, description or tags
	Search(ctx context.Context, term string) ([]domain.PublicProduct, error)
	// ByCategory lists active products of a category
	ByCategory(ctx context.Context, category string) ([]domain.PublicProduct, error)
	// Statistics summarises active products
	Statistics(ctx context.Context) domain.ProductStatistics
	// Categories lists distinct categories of active products
	Categories(ctx context.Context) []string
	// Brands lists distinct brands of active products
	Brands(ctx context.Context) []string
}

// ProductList is the result of ProductRepository.List. Pagination is nil
// for unpaginated listings.
type ProductList struct {
	Products   []domain.PublicProduct
	Pagination *query.Pagination
}

// UserRepository defines the interface for user directory access
type UserRepository interface {
	// List returns every user passing the filter, active or not
	List(ctx context.Context, filter *UserFilter) ([]domain.PublicUser, error)
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int) (*domain.PublicUser, error)
	// GetByUsername retrieves a user by username, ignoring case
	GetByUsername(ctx context.Context, username string) (*domain.PublicUser, error)
	// GetByEmail retrieves a user by email, ignoring case
	GetByEmail(ctx context.Context, email string) (*domain.PublicUser, error)
	// FindForAuth returns the full record matching a username or email.
	// The result carries the password hash and must not leave the process.
	FindForAuth(ctx context.Context, identifier string) (*domain.User, error)
	// Create validates, hashes the password and stores a new user
	Create(ctx context.Context, input domain.UserInput) (*domain.PublicUser, error)
	// Update applies a partial update
	Update(ctx context.Context, id int, patch *domain.UserPatch) (*domain.PublicUser, error)
	// Deactivate marks a user inactive
	Deactivate(ctx context.Context, id int) bool
	// IncrementLoginAttempts records a failed login, locking at the threshold
	IncrementLoginAttempts(ctx context.Context, id int) (*domain.PublicUser, error)
	// RecordLogin records a successful login
	RecordLogin(ctx context.Context, id int) (*domain.PublicUser, error)
	// Unlock clears the lock and the failed attempt counter
	Unlock(ctx context.Context, id int) (*domain.PublicUser, error)
	// ChangePassword checks the password policy and stores the new hash
	ChangePassword(ctx context.Context, id int, newPassword string) error
	// HasPermission reports whether an active user's role grants permission
	HasPermission(ctx context.Context, id int, permission string) bool
	// Statistics summarises the directory
	Statistics(ctx context.Context) domain.UserStatistics
	// Roles returns the role table
	Roles(ctx context.Context) domain.RoleTable
	// Role returns one role by name
	Role(ctx context.Context, name string) (*domain.Role, error)
}
