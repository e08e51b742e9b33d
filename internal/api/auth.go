package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pulse-social/pulse/internal/auth"
	"github.com/pulse-social/pulse/internal/db"
	"github.com/pulse-social/pulse/internal/models"
	"github.com/pulse-social/pulse/pkg/logging"
)

// AuthAPI provides registration, login and token refresh
type AuthAPI struct {
	users      *db.UserRepository
	tokens     *auth.Service
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthAPI creates a new auth API
func NewAuthAPI(users *db.UserRepository, tokens *auth.Service, bcryptCost int) *AuthAPI {
	return &AuthAPI{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logging.WithComponent("api-auth"),
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register handles POST /api/register
func (a *AuthAPI) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password, a.bcryptCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := a.users.Create(c.Request.Context(), user); err != nil {
		// The unique constraints on username/email are the source of truth.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username or email already taken"})
			return
		}
		respondError(c, err)
		return
	}

	a.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))

	c.JSON(http.StatusCreated, user)
}

type tokenRequest struct {
	// Login accepts a username or an email in the same field.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Token handles POST /api/token
func (a *AuthAPI) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := a.users.GetByLogin(c.Request.Context(), req.Login)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	pair, err := a.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenRefresh handles POST /api/token/refresh
func (a *AuthAPI) TokenRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := a.tokens.ValidateRefreshToken(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	// The user may have been deleted since the token was issued.
	user, err := a.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	pair, err := a.tokens.GenerateTokenPair(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Me handles GET /api/me
func (a *AuthAPI) Me(c *gin.Context) {
	user, err := a.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, user)
}
