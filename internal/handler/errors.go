package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/middleware"
	"github.com/prohmpiriya/tienda-api/pkg/response"
)

// handleError writes the status and envelope matching the error kind
func handleError(c *gin.Context, err error, fallback string) {
	code := domain.ErrorCode(err)

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrPolicyViolation):
		violations := domain.Violations(err)
		if len(violations) == 0 {
			response.Error(c, http.StatusBadRequest, code, err.Error(), "")
			return
		}
		response.ValidationFailed(c, code, err.Error(), violations)
	case errors.Is(err, domain.ErrAuthentication):
		response.Error(c, http.StatusUnauthorized, code, err.Error(), "")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, code, err.Error(), "")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		response.Error(c, http.StatusConflict, code, err.Error(), "")
	default:
		logger.Get().Error(fallback,
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
		)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback, "")
	}
}

// parseID reads a positive integer path parameter. It writes a 400 and
// returns false when the value is malformed.
func parseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" parameter", "")
		return 0, false
	}
	return id, true
}

// bindError reports a request that could not be decoded or bound
func bindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request", err.Error())
}
