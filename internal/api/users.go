package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulse-social/pulse/internal/interaction"
	"github.com/pulse-social/pulse/internal/profile"
	"github.com/pulse-social/pulse/pkg/logging"
)

// UserAPI provides user profiles and follow toggling
type UserAPI struct {
	engine   *interaction.Engine
	profiles *profile.Assembler
	logger   *zap.Logger
}

// NewUserAPI creates a new user API
func NewUserAPI(engine *interaction.Engine, profiles *profile.Assembler) *UserAPI {
	return &UserAPI{
		engine:   engine,
		profiles: profiles,
		logger:   logging.WithComponent("api-users"),
	}
}

// ToggleFollow handles POST /api/users/:user/follow
func (u *UserAPI) ToggleFollow(c *gin.Context) {
	followeeID, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	result, err := u.engine.ToggleFollow(c.Request.Context(), currentUserID(c), followeeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProfile handles GET /api/users/:user. The page query parameter selects
// a page of the user's posts; pages are numbered from 1.
func (u *UserAPI) GetProfile(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
			return
		}
		page = parsed
	}

	result, err := u.profiles.GetProfile(c.Request.Context(), currentUserID(c), c.Param("user"), page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
