package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/internal/seed"
)

var testHasher = domain.NewBcryptHasher(4)

func newTestUserRepository(t *testing.T, maxAttempts int) *repository.MemoryUserRepository {
	t.Helper()
	dir, err := seed.Users(testHasher)
	require.NoError(t, err)

	repo, err := repository.NewMemoryUserRepository(dir.Users, &repository.UserRepositoryConfig{
		Roles:            dir.Roles,
		Hasher:           testHasher,
		PasswordPolicy:   domain.DefaultPasswordPolicy(),
		MaxLoginAttempts: maxAttempts,
		Clock:            func() time.Time { return baseTime },
	})
	require.NoError(t, err)
	return repo
}

func newTestUserService(t *testing.T) (UserService, *mockEventPublisher) {
	t.Helper()
	publisher := newMockEventPublisher()
	return NewUserService(newTestUserRepository(t, 0), publisher), publisher
}

func TestUserService_CreateUser(t *testing.T) {
	svc, publisher := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.CreateUserRequest{
		Username: "nuevo_1",
		Email:    "nuevo@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, 8, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.DefaultPreferences(), user.Preferences)
	assert.Equal(t, []recordedEvent{{Type: domain.EventUserCreated, ID: 8}}, publisher.published())
}

func TestUserService_CreateUser_Errors(t *testing.T) {
	svc, publisher := newTestUserService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   *dto.CreateUserRequest
		check func(error) bool
	}{
		{
			"duplicate username",
			&dto.CreateUserRequest{Username: "admin", Email: "other@example.com", Password: "secret1"},
			domain.IsConflictError,
		},
		{
			"duplicate email ignores case",
			&dto.CreateUserRequest{Username: "other", Email: "ADMIN@tienda.com", Password: "secret1"},
			domain.IsConflictError,
		},
		{
			"invalid username",
			&dto.CreateUserRequest{Username: "a b", Email: "ab@example.com", Password: "secret1"},
			domain.IsValidationError,
		},
		{
			"unknown role",
			&dto.CreateUserRequest{Username: "rolex", Email: "rolex@example.com", Password: "secret1", Role: "owner"},
			domain.IsValidationError,
		},
		{
			"short password",
			&dto.CreateUserRequest{Username: "shorty", Email: "shorty@example.com", Password: "abc"},
			domain.IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.req)
			if !tt.check(err) {
				t.Errorf("CreateUser() error = %v", err)
			}
		})
	}
	assert.Empty(t, publisher.published())
}

func TestUserService_ListUsers(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	all, err := svc.ListUsers(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, all.Count)

	locked, err := svc.ListUsers(ctx, &dto.UserListFilter{IsLocked: ptr(true)})
	require.NoError(t, err)
	require.Equal(t, 1, locked.Count)
	assert.Equal(t, "spammer", locked.Users[0].Username)

	_, err = svc.ListUsers(ctx, &dto.UserListFilter{SortBy: "age"})
	assert.True(t, domain.IsValidationError(err))
}

func TestUserService_UpdateUser(t *testing.T) {
	svc, publisher := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.UpdateUser(ctx, 3, &dto.UpdateUserRequest{FirstName: ptr("Mariana")})
	require.NoError(t, err)
	assert.Equal(t, "Mariana", user.FirstName)
	assert.Equal(t, 1, publisher.count(domain.EventUserUpdated))

	_, err = svc.UpdateUser(ctx, 3, &dto.UpdateUserRequest{Email: ptr("admin@tienda.com")})
	assert.True(t, domain.IsConflictError(err))

	_, err = svc.UpdateUser(ctx, 99, &dto.UpdateUserRequest{FirstName: ptr("x")})
	assert.True(t, domain.IsNotFoundError(err))
}

func TestUserService_DeactivateAndUnlock(t *testing.T) {
	svc, publisher := newTestUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeactivateUser(ctx, 4))
	user, err := svc.GetUser(ctx, 4)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.False(t, svc.HasPermission(ctx, 4, "products.read"))

	assert.True(t, domain.IsNotFoundError(svc.DeactivateUser(ctx, 99)))

	unlocked, err := svc.UnlockUser(ctx, 7)
	require.NoError(t, err)
	assert.False(t, unlocked.IsLocked)
	assert.Zero(t, unlocked.LoginAttempts)

	assert.Equal(t, []recordedEvent{
		{Type: domain.EventUserDeactivated, ID: 4},
		{Type: domain.EventUserUnlocked, ID: 7},
	}, publisher.published())
}

func TestUserService_PermissionsAndStatistics(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	assert.True(t, svc.HasPermission(ctx, 1, "system.admin"))
	assert.False(t, svc.HasPermission(ctx, 3, "products.delete"))
	assert.False(t, svc.HasPermission(ctx, 99, "products.read"))

	stats := svc.GetStatistics(ctx)
	assert.Equal(t, 7, stats.TotalUsers)
	assert.Equal(t, 6, stats.ActiveUsers)
	assert.Equal(t, 1, stats.LockedUsers)

	assert.Len(t, svc.ListRoles(ctx), 4)
}
