package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/query"
)

const (
	// DefaultMaxLoginAttempts is the lockout threshold
	DefaultMaxLoginAttempts = 5

	recentLoginWindow = 24 * time.Hour
)

// UserRepositoryConfig configures MemoryUserRepository
type UserRepositoryConfig struct {
	Roles            domain.RoleTable
	Hasher           domain.PasswordHasher
	PasswordPolicy   domain.PasswordPolicy
	MaxLoginAttempts int
	Clock            Clock
}

// MemoryUserRepository implements UserRepository over an in-memory slice.
// Users are never removed; Deactivate only clears IsActive.
type MemoryUserRepository struct {
	users  []*domain.User
	byID   map[int]*domain.User
	nextID int
	config UserRepositoryConfig
	mu     sync.RWMutex
}

// NewMemoryUserRepository copies the seed, whose passwords must already be
// hashed, and computes the next id once
func NewMemoryUserRepository(seed []*domain.User, config *UserRepositoryConfig) (*MemoryUserRepository, error) {
	cfg := UserRepositoryConfig{}
	if config != nil {
		cfg = *config
	}
	if len(cfg.Roles) == 0 {
		cfg.Roles = domain.DefaultRoles()
	}
	if cfg.Hasher == nil {
		cfg.Hasher = domain.NewBcryptHasher(0)
	}
	if cfg.PasswordPolicy.MinLength == 0 {
		cfg.PasswordPolicy.MinLength = domain.DefaultPasswordPolicy().MinLength
	}
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	cfg.Roles = cfg.Roles.Clone()

	r := &MemoryUserRepository{
		users:  make([]*domain.User, 0, len(seed)),
		byID:   make(map[int]*domain.User, len(seed)),
		nextID: 1,
		config: cfg,
	}

	for _, u := range seed {
		if _, exists := r.byID[u.ID]; exists {
			return nil, fmt.Errorf("duplicate user id %d in seed", u.ID)
		}
		if r.findByUsername(u.Username) != nil || r.findByEmail(u.Email) != nil {
			return nil, fmt.Errorf("duplicate username or email for user %d in seed", u.ID)
		}
		c := u.Clone()
		r.users = append(r.users, c)
		r.byID[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}

	return r, nil
}

// List filters and sorts all users, including inactive and locked ones
func (r *MemoryUserRepository) List(ctx context.Context, filter *UserFilter) ([]domain.PublicUser, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := query.Filter(r.users, filter.predicates()...)
	query.SortStable(matched, filter.comparator())

	out := make([]domain.PublicUser, 0, len(matched))
	for _, u := range matched {
		out = append(out, u.ToPublic())
	}
	return out, nil
}

// GetByID retrieves a user by id
func (r *MemoryUserRepository) GetByID(ctx context.Context, id int) (*domain.PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return publicUser(r.byID[id])
}

// GetByUsername retrieves a user by username, ignoring case
func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return publicUser(r.findByUsername(username))
}

// GetByEmail retrieves a user by email, ignoring case
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return publicUser(r.findByEmail(email))
}

// FindForAuth matches identifier against usernames first, then emails
func (r *MemoryUserRepository) FindForAuth(ctx context.Context, identifier string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u := r.findByUsername(identifier)
	if u == nil {
		u = r.findByEmail(identifier)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

// Create checks uniqueness, then validates, then hashes and stores. Hashing
// runs outside the lock; uniqueness is checked again before the commit.
func (r *MemoryUserRepository) Create(ctx context.Context, input domain.UserInput) (*domain.PublicUser, error) {
	u := &domain.User{
		Username:    strings.TrimSpace(input.Username),
		Email:       strings.TrimSpace(input.Email),
		Role:        input.Role,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		IsActive:    true,
		Preferences: domain.DefaultPreferences(),
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if input.Preferences != nil {
		u.Preferences = *input.Preferences
	}

	r.mu.RLock()
	err := r.checkUnique(u.Username, u.Email)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	violations := u.ValidateProfile(r.config.Roles)
	if len([]rune(input.Password)) < r.config.PasswordPolicy.MinLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters", r.config.PasswordPolicy.MinLength))
	}
	if len(input.Password) > domain.MaxPasswordBytes {
		violations = append(violations, domain.PasswordTooLongMessage)
	}
	if err := domain.NewValidationError(violations); err != nil {
		return nil, err
	}

	hash, err := r.config.Hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(u.Username, u.Email); err != nil {
		return nil, err
	}

	now := r.config.Clock.now()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.nextID++
	r.users = append(r.users, u)
	r.byID[u.ID] = u

	pub := u.ToPublic()
	return &pub, nil
}

// Update applies the patch to a copy, checks it and only then commits
func (r *MemoryUserRepository) Update(ctx context.Context, id int, patch *domain.UserPatch) (*domain.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	next := u.Clone()
	patch.Apply(next)

	if patch != nil && patch.Email != nil {
		if other := r.findByEmail(next.Email); other != nil && other.ID != id {
			return nil, domain.ErrEmailTaken
		}
	}
	if err := domain.NewValidationError(next.ValidateProfile(r.config.Roles)); err != nil {
		return nil, err
	}
	next.Touch(r.config.Clock.now())

	*u = *next
	pub := u.ToPublic()
	return &pub, nil
}

// Deactivate returns false when the user does not exist
func (r *MemoryUserRepository) Deactivate(ctx context.Context, id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return false
	}
	u.IsActive = false
	u.Touch(r.config.Clock.now())
	return true
}

// IncrementLoginAttempts locks the account once attempts reach the threshold
func (r *MemoryUserRepository) IncrementLoginAttempts(ctx context.Context, id int) (*domain.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	u.LoginAttempts++
	if u.LoginAttempts >= r.config.MaxLoginAttempts {
		u.IsLocked = true
	}
	u.Touch(r.config.Clock.now())

	pub := u.ToPublic()
	return &pub, nil
}

// RecordLogin resets the attempt counter and stamps LastLogin. A locked
// account is refused.
func (r *MemoryUserRepository) RecordLogin(ctx context.Context, id int) (*domain.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.IsLocked {
		return nil, domain.ErrAccountLocked
	}

	now := r.config.Clock.now()
	u.LoginAttempts = 0
	u.LastLogin = &now
	u.Touch(now)

	pub := u.ToPublic()
	return &pub, nil
}

// Unlock clears the lock and the attempt counter
func (r *MemoryUserRepository) Unlock(ctx context.Context, id int) (*domain.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsLocked = false
	u.LoginAttempts = 0
	u.Touch(r.config.Clock.now())

	pub := u.ToPublic()
	return &pub, nil
}

// ChangePassword checks the policy and stores the new hash
func (r *MemoryUserRepository) ChangePassword(ctx context.Context, id int, newPassword string) error {
	r.mu.RLock()
	_, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrUserNotFound
	}

	if err := r.config.PasswordPolicy.Validate(newPassword); err != nil {
		return err
	}
	hash, err := r.config.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.byID[id]
	u.PasswordHash = hash
	u.Touch(r.config.Clock.now())
	return nil
}

// HasPermission is false for missing or inactive users
func (r *MemoryUserRepository) HasPermission(ctx context.Context, id int, permission string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok || !u.IsActive {
		return false
	}
	role, ok := r.config.Roles.Get(u.Role)
	return ok && role.HasPermission(permission)
}

// Statistics summarises the directory. RecentLogins counts logins within
// the last 24 hours.
func (r *MemoryUserRepository) Statistics(ctx context.Context) domain.UserStatistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.UserStatistics{UsersByRole: make(map[string]int)}
	since := r.config.Clock.now().Add(-recentLoginWindow)

	for _, u := range r.users {
		stats.TotalUsers++
		if u.IsActive {
			stats.ActiveUsers++
		}
		if u.IsLocked {
			stats.LockedUsers++
		}
		stats.UsersByRole[u.Role]++
		if u.LastLogin != nil && u.LastLogin.After(since) {
			stats.RecentLogins++
		}
	}
	return stats
}

// Roles returns a copy of the role table
func (r *MemoryUserRepository) Roles(ctx context.Context) domain.RoleTable {
	return r.config.Roles.Clone()
}

// Role returns one role by name
func (r *MemoryUserRepository) Role(ctx context.Context, name string) (*domain.Role, error) {
	role, ok := r.config.Roles.Get(name)
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

// MaxLoginAttempts is the configured lockout threshold
func (r *MemoryUserRepository) MaxLoginAttempts() int {
	return r.config.MaxLoginAttempts
}

func (r *MemoryUserRepository) checkUnique(username, email string) error {
	if r.findByUsername(username) != nil {
		return domain.ErrUsernameTaken
	}
	if r.findByEmail(email) != nil {
		return domain.ErrEmailTaken
	}
	return nil
}

func (r *MemoryUserRepository) findByUsername(username string) *domain.User {
	username = strings.TrimSpace(username)
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

func (r *MemoryUserRepository) findByEmail(email string) *domain.User {
	email = strings.TrimSpace(email)
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func publicUser(u *domain.User) (*domain.PublicUser, error) {
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	pub := u.ToPublic()
	return &pub, nil
}
