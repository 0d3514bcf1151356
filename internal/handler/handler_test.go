package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/internal/seed"
	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	testTime   = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	testHasher = domain.NewBcryptHasher(4)
)

// fixture wires real services over the seeded in-memory repositories
type fixture struct {
	products service.ProductService
	users    service.UserService
	auth     service.AuthService
	userRepo *repository.MemoryUserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return testTime }

	products, err := seed.Products(testTime)
	require.NoError(t, err)
	productRepo, err := repository.NewMemoryProductRepository(products, clock)
	require.NoError(t, err)

	dir, err := seed.Users(testHasher)
	require.NoError(t, err)
	userRepo, err := repository.NewMemoryUserRepository(dir.Users, &repository.UserRepositoryConfig{
		Roles:            dir.Roles,
		Hasher:           testHasher,
		PasswordPolicy:   domain.DefaultPasswordPolicy(),
		MaxLoginAttempts: 3,
		Clock:            clock,
	})
	require.NoError(t, err)

	tokens, err := service.NewTokenService(&service.TokenServiceConfig{Secret: "handler-test", TTL: time.Hour})
	require.NoError(t, err)

	publisher := service.NewNoOpEventPublisher()
	return &fixture{
		products: service.NewProductService(productRepo, publisher),
		users:    service.NewUserService(userRepo, publisher),
		auth: service.NewAuthService(userRepo, tokens, publisher, &service.AuthServiceConfig{
			Hasher:           testHasher,
			PasswordPolicy:   domain.DefaultPasswordPolicy(),
			MaxLoginAttempts: 3,
		}),
		userRepo: userRepo,
	}
}

// login returns a bearer header value for the given credentials
func (f *fixture) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, err := f.auth.Login(context.Background(), &dto.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	return "Bearer " + resp.Token
}

func doRequest(r http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()
	var resp response.Response
	if data != nil {
		resp.Data = data
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
