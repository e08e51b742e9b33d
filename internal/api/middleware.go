package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulse-social/pulse/internal/auth"
	"github.com/pulse-social/pulse/internal/cache"
	"github.com/pulse-social/pulse/pkg/logging"
)

// userIDKey is the gin context key holding the authenticated user's ID
const userIDKey = "user_id"

// currentUserID returns the authenticated user's ID, or 0 for anonymous
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// RequestLogger tags each request with a request ID and logs its outcome
func RequestLogger() gin.HandlerFunc {
	logger := logging.WithComponent("http")
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// RequireAuth rejects requests without a valid bearer access token
func RequireAuth(tokens *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := bearerUserID(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a bearer token is
// present. Requests without a token proceed anonymously; requests with an
// invalid token are still rejected.
func OptionalAuth(tokens *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		userID, ok := bearerUserID(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerUserID(c *gin.Context, tokens *auth.Service) (int64, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, false
	}

	claims, err := tokens.ValidateAccessToken(parts[1])
	if err != nil {
		return 0, false
	}
	userID, err := claims.UserID()
	if err != nil || userID == 0 {
		return 0, false
	}
	return userID, true
}

// RateLimit caps requests per caller per window using a Redis counter. When
// the cache is disabled the limiter is a no-op.
func RateLimit(redisCache *cache.Cache, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.ClientIP()
		if userID := currentUserID(c); userID != 0 {
			caller = strconv.FormatInt(userID, 10)
		}

		key := "rate_limit:" + cache.HashKey(c.FullPath(), caller)
		count, err := redisCache.Incr(c.Request.Context(), key, window)
		if err != nil {
			if errors.Is(err, cache.ErrCacheDisabled) {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rate limit check failed"})
			return
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
