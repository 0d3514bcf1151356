package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/middleware"
)

func newAuthRouter(f *fixture) *gin.Engine {
	h := NewAuthHandler(f.auth, f.users)
	r := gin.New()
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/config", h.Config)
		auth.GET("/users", h.Users)

		protected := auth.Group("")
		protected.Use(middleware.Auth(f.auth))
		{
			protected.GET("/verify", h.Verify)
			protected.GET("/me", h.Me)
			protected.POST("/change-password", h.ChangePassword)
		}
	}
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	r := newAuthRouter(newFixture(t))

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"by username", dto.LoginRequest{Username: "admin", Password: "admin123"}, http.StatusOK, ""},
		{"by email", dto.LoginRequest{Username: "admin@tienda.com", Password: "admin123"}, http.StatusOK, ""},
		{"wrong password", dto.LoginRequest{Username: "admin", Password: "nope"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown user", dto.LoginRequest{Username: "ghost", Password: "nope"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"inactive", dto.LoginRequest{Username: "cliente3", Password: "clave123"}, http.StatusUnauthorized, "ACCOUNT_INACTIVE"},
		{"locked", dto.LoginRequest{Username: "spammer", Password: "blocked"}, http.StatusUnauthorized, "ACCOUNT_LOCKED"},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/v1/auth/login", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
				return
			}

			var login dto.LoginResponse
			decodeResponse(t, w, &login)
			assert.NotEmpty(t, login.Token)
			assert.Equal(t, "Bearer", login.TokenType)
			assert.Equal(t, "admin", login.User.Username)
			assert.NotContains(t, w.Body.String(), "$2a$")
		})
	}
}

func TestAuthHandler_LockoutThroughHTTP(t *testing.T) {
	r := newAuthRouter(newFixture(t))
	wrong := dto.LoginRequest{Username: "cliente2", Password: "bad"}

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodPost, "/api/v1/auth/login", wrong)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
	}

	w := doRequest(r, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "cliente2", Password: "cliente456"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ACCOUNT_LOCKED", errorCode(t, w))
}

func TestAuthHandler_VerifyAndMe(t *testing.T) {
	f := newFixture(t)
	r := newAuthRouter(f)
	token := f.login(t, "vendedor1", "vend123")

	w := doRequest(r, http.MethodGet, "/api/v1/auth/verify", nil, "Authorization", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verify dto.VerifyResponse
	decodeResponse(t, w, &verify)
	assert.True(t, verify.TokenValid)
	assert.Equal(t, 2, verify.User.ID)
	assert.False(t, verify.ExpiresAt.IsZero())

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", token)
	require.Equal(t, http.StatusOK, w.Code)
	var me domain.PublicUser
	decodeResponse(t, w, &me)
	assert.Equal(t, "vendedor1", me.Username)

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, w))

	w = doRequest(r, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, w))
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	f := newFixture(t)
	r := newAuthRouter(f)
	token := f.login(t, "cliente1", "cli123")

	w := doRequest(r, http.MethodPost, "/api/v1/auth/change-password",
		dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "nueva123"}, "Authorization", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/auth/change-password",
		dto.ChangePasswordRequest{CurrentPassword: "cli123", NewPassword: "abc"}, "Authorization", token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "POLICY_VIOLATION", errorCode(t, w))

	w = doRequest(r, http.MethodPost, "/api/v1/auth/change-password",
		dto.ChangePasswordRequest{CurrentPassword: "cli123", NewPassword: "nueva123"}, "Authorization", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "cliente1", Password: "nueva123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_ConfigAndUsers(t *testing.T) {
	r := newAuthRouter(newFixture(t))

	w := doRequest(r, http.MethodGet, "/api/v1/auth/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg dto.AuthConfigResponse
	decodeResponse(t, w, &cfg)
	assert.Equal(t, 3, cfg.MaxLoginAttempts)
	assert.Equal(t, int64(3600), cfg.TokenTTLSeconds)
	assert.Equal(t, 6, cfg.PasswordPolicy.MinLength)

	w = doRequest(r, http.MethodGet, "/api/v1/auth/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []domain.PublicUser
	decodeResponse(t, w, &users)
	assert.Len(t, users, 7)
	assert.NotContains(t, w.Body.String(), "$2a$")
}
