package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulse-social/pulse/internal/auth"
	"github.com/pulse-social/pulse/internal/cache"
	"github.com/pulse-social/pulse/internal/db"
	"github.com/pulse-social/pulse/internal/feed"
	"github.com/pulse-social/pulse/internal/interaction"
	"github.com/pulse-social/pulse/internal/media"
	"github.com/pulse-social/pulse/internal/profile"
	"github.com/pulse-social/pulse/pkg/config"
	"github.com/pulse-social/pulse/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db       *db.DB
	cache    *cache.Cache
	tokens   *auth.Service
	uploader *media.Uploader
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, tokens *auth.Service, uploader *media.Uploader, cfg *config.Config) *Router {
	return &Router{
		db:       database,
		cache:    redisCache,
		tokens:   tokens,
		uploader: uploader,
		cfg:      cfg,
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(RequestLogger())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	repo := db.NewRepository(r.db.DB)
	users := db.NewUserRepository(repo)
	posts := db.NewPostRepository(repo)
	likes := db.NewLikeRepository(repo)

	interactions := interaction.NewEngine(r.db.DB, r.cache)
	feedAssembler := feed.NewAssembler(r.db.DB)
	profileAssembler := profile.NewAssembler(r.db.DB, r.cache)

	authAPI := NewAuthAPI(users, r.tokens, r.cfg.Auth.BcryptCost)
	postAPI := NewPostAPI(posts, likes, interactions, feedAssembler)
	userAPI := NewUserAPI(interactions, profileAssembler)
	feedAPI := NewFeedAPI(feedAssembler)
	mediaAPI := NewMediaAPI(r.uploader)

	requireAuth := RequireAuth(r.tokens)
	optionalAuth := OptionalAuth(r.tokens)
	rate := RateLimit(r.cache, r.cfg.Server.RateLimit, r.cfg.Server.RateLimitWindow)

	api := engine.Group("/api")

	api.POST("/register", rate, authAPI.Register)
	api.POST("/token", rate, authAPI.Token)
	api.POST("/token/refresh", authAPI.TokenRefresh)
	api.GET("/me", requireAuth, authAPI.Me)

	api.GET("/posts", optionalAuth, postAPI.List)
	api.POST("/posts", requireAuth, rate, postAPI.Create)
	api.GET("/posts/:id", optionalAuth, postAPI.Get)
	api.PUT("/posts/:id", requireAuth, postAPI.Update)
	api.DELETE("/posts/:id", requireAuth, postAPI.Delete)
	api.POST("/posts/:id/like", requireAuth, rate, postAPI.ToggleLike)

	api.GET("/feed", requireAuth, feedAPI.GetFeed)

	// Both routes share the :user parameter: an ID for follow toggles, a
	// username for profile lookups.
	api.GET("/users/:user", optionalAuth, userAPI.GetProfile)
	api.POST("/users/:user/follow", requireAuth, rate, userAPI.ToggleFollow)

	api.POST("/media/uploads", requireAuth, mediaAPI.PresignUpload)
}

// healthHandler reports service and dependency health
func (r *Router) healthHandler(c *gin.Context) {
	status := "OK"
	code := http.StatusOK

	if err := r.db.Health(c.Request.Context()); err != nil {
		r.logger.Error("database health check failed", zap.Error(err))
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"service": "pulse-api",
	})
}
