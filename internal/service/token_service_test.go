package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

const testSecret = "test-secret"

func TestNewTokenService_RequiresSecret(t *testing.T) {
	if _, err := NewTokenService(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewTokenService(&TokenServiceConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}

	svc, err := NewTokenService(&TokenServiceConfig{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())
}

func TestTokenService_SignAndVerify(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	svc, err := NewTokenService(&TokenServiceConfig{
		Secret: testSecret,
		TTL:    time.Hour,
		Issuer: "tienda-api",
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)

	user := &domain.PublicUser{ID: 5, Username: "manager1", Email: "manager@tienda.com", Role: "manager"}
	token, expiresAt, err := svc.Sign(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), expiresAt.Unix())

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, 5, claims.UserID)
	assert.Equal(t, "manager1", claims.Username)
	assert.Equal(t, "manager@tienda.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)

	parsed := &tokenClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, parsed)
	require.NoError(t, err)
	assert.Equal(t, "5", parsed.Subject)
	assert.Equal(t, "tienda-api", parsed.Issuer)
}

func TestTokenService_Verify_Errors(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc, err := NewTokenService(&TokenServiceConfig{Secret: testSecret, TTL: time.Hour, Issuer: "tienda-api", Now: clock})
	require.NoError(t, err)

	token, _, err := svc.Sign(&domain.PublicUser{ID: 1, Username: "admin", Role: "admin"})
	require.NoError(t, err)

	otherKey, err := NewTokenService(&TokenServiceConfig{Secret: "other", Issuer: "tienda-api", Now: clock})
	require.NoError(t, err)
	forged, _, err := otherKey.Sign(&domain.PublicUser{ID: 1, Username: "admin", Role: "admin"})
	require.NoError(t, err)

	otherIssuer, err := NewTokenService(&TokenServiceConfig{Secret: testSecret, Issuer: "someone-else", Now: clock})
	require.NoError(t, err)
	foreign, _, err := otherIssuer.Sign(&domain.PublicUser{ID: 1, Username: "admin", Role: "admin"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1, "sub": "1", "exp": now.Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", forged},
		{"wrong issuer", foreign},
		{"alg none", unsigned},
		{"tampered", token[:strings.LastIndex(token, ".")] + ".c2lnbmF0dXJl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	now := time.Now()
	svc, err := NewTokenService(&TokenServiceConfig{
		Secret: testSecret,
		TTL:    time.Minute,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)

	token, _, err := svc.Sign(&domain.PublicUser{ID: 2, Username: "vendedor1", Role: "seller"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
	assert.True(t, errors.Is(err, domain.ErrAuthentication))
}
