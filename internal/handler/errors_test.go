package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.NewValidationError([]string{"title is required", "price must be greater than 0"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"policy", &domain.PolicyViolationError{Violations: []string{"too short"}}, http.StatusBadRequest, "POLICY_VIOLATION"},
		{"locked", domain.ErrAccountLocked, http.StatusUnauthorized, "ACCOUNT_LOCKED"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"not found", domain.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrUserNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", domain.ErrUsernameTaken, http.StatusConflict, "CONFLICT"},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { handleError(c, tt.err, "Failed") })

			w := doRequest(r, http.MethodGet, "/", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestHandleError_ListsViolations(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		handleError(c, domain.NewValidationError([]string{"a", "b"}), "Failed")
	})

	w := doRequest(r, http.MethodGet, "/", nil)
	resp := decodeResponse(t, w, nil)
	assert.Equal(t, "a; b", resp.Error.Details)
	assert.Equal(t, map[string]interface{}{"violations": []interface{}{"a", "b"}}, resp.Meta)
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { handleError(c, errors.New("dsn=postgres://secret"), "Failed to list") })

	w := doRequest(r, http.MethodGet, "/", nil)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Equal(t, "Failed to list", decodeResponse(t, w, nil).Error.Message)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		param  string
		wantOK bool
		wantID int
	}{
		{"7", true, 7},
		{"0", false, 0},
		{"-3", false, 0},
		{"abc", false, 0},
		{"1.5", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			r := gin.New()
			r.GET("/items/:id", func(c *gin.Context) {
				id, ok := parseID(c, "id")
				if ok {
					c.JSON(http.StatusOK, gin.H{"id": id})
				}
			})

			w := doRequest(r, http.MethodGet, "/items/"+tt.param, nil)
			if tt.wantOK {
				assert.Equal(t, http.StatusOK, w.Code)
				assert.JSONEq(t, fmt.Sprintf(`{"id":%d}`, tt.wantID), w.Body.String())
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_ID", errorCode(t, w))
		})
	}
}
