package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pulse-social/pulse/internal/feed"
	"github.com/pulse-social/pulse/internal/interaction"
	"github.com/pulse-social/pulse/internal/profile"
	"github.com/pulse-social/pulse/pkg/logging"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// respondError maps domain errors onto HTTP statuses and writes a structured
// JSON error body. Unrecognized errors become 500s and are logged; nothing
// is silently swallowed.
func respondError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		c.AbortWithStatusJSON(apiErr.Code, gin.H{"error": apiErr.Message})
	case errors.Is(err, interaction.ErrPostNotFound),
		errors.Is(err, interaction.ErrUserNotFound),
		errors.Is(err, profile.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, interaction.ErrFollowSelf),
		errors.Is(err, feed.ErrInvalidCursor):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, interaction.ErrConflict),
		errors.Is(err, gorm.ErrDuplicatedKey):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.WithComponent("api").Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
