package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

func TestProducts(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	products, err := Products(now)
	require.NoError(t, err)
	require.Len(t, products, 20)

	maxID := 0
	seen := map[int]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
		maxID = max(maxID, p.ID)
		assert.True(t, p.IsActive)
		assert.Equal(t, now, p.CreatedAt)
	}
	assert.Equal(t, 20, maxID)

	first := products[0]
	assert.Equal(t, "electronics", first.Category)
	assert.Equal(t, "TechPro", first.Brand)
	assert.Equal(t, 4.7, first.Rating.Rate)
	assert.Equal(t, []string{"gaming", "laptop", "high-performance", "intel"}, first.Tags)
}

func TestUsers(t *testing.T) {
	hasher := domain.NewBcryptHasher(4)
	dir, err := Users(hasher)
	require.NoError(t, err)
	require.Len(t, dir.Users, 7)
	require.Len(t, dir.Roles, 4)

	admin := dir.Users[0]
	assert.Equal(t, "admin", admin.Username)
	assert.NotEqual(t, "admin123", admin.PasswordHash)
	assert.True(t, hasher.Compare(admin.PasswordHash, "admin123"))
	assert.Equal(t, domain.DefaultPreferences(), admin.Preferences)
	require.NotNil(t, admin.LastLogin)
	assert.Equal(t, 2024, admin.LastLogin.Year())

	spammer := dir.Users[6]
	assert.True(t, spammer.IsLocked)
	assert.Equal(t, 5, spammer.LoginAttempts)
	assert.Nil(t, spammer.LastLogin)

	assert.False(t, dir.Users[5].IsActive)

	manager, ok := dir.Roles.Get(domain.RoleManager)
	require.True(t, ok)
	assert.True(t, manager.HasPermission("products.delete"))
	assert.False(t, manager.HasPermission("users.delete"))
}

func TestStoreSamples(t *testing.T) {
	samples, err := StoreSamples()
	require.NoError(t, err)
	assert.Len(t, samples, 6)
	assert.Equal(t, "iPhone 13 Pro", samples[0].Title)
	assert.Equal(t, "Apple", samples[0].Brand)
}
