package httpapi

import (
	"context"
	"errors"
	"net/http"

	"memorial-registry/internal/apperr"
	"memorial-registry/pkg/logger"

	"github.com/gin-gonic/gin"
)

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		return http.StatusBadRequest
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrConflict:
		return http.StatusConflict
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// abortWithError writes err as JSON. Classified errors carry their message;
// internal ones are logged and answered with a generic body.
func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.From(c.Request.Context()).Error("request failed", "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
