package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulse-social/pulse/internal/db"
	"github.com/pulse-social/pulse/internal/feed"
	"github.com/pulse-social/pulse/internal/interaction"
	"github.com/pulse-social/pulse/internal/models"
	"github.com/pulse-social/pulse/pkg/logging"
)

// PostAPI provides post CRUD and like toggling
type PostAPI struct {
	posts  *db.PostRepository
	likes  *db.LikeRepository
	engine *interaction.Engine
	feed   *feed.Assembler
	logger *zap.Logger
}

// NewPostAPI creates a new post API
func NewPostAPI(posts *db.PostRepository, likes *db.LikeRepository, engine *interaction.Engine, feedAssembler *feed.Assembler) *PostAPI {
	return &PostAPI{
		posts:  posts,
		likes:  likes,
		engine: engine,
		feed:   feedAssembler,
		logger: logging.WithComponent("api-posts"),
	}
}

// List handles GET /api/posts: all posts, newest first, cursor-paginated
func (p *PostAPI) List(c *gin.Context) {
	page, err := p.feed.GetRecent(c.Request.Context(), currentUserID(c), c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type createPostRequest struct {
	Text     string `json:"text" binding:"required,max=4000"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=2048"`
}

// Create handles POST /api/posts
func (p *PostAPI) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := &models.Post{
		AuthorID: currentUserID(c),
		Text:     req.Text,
		ImageURL: req.ImageURL,
	}
	if err := p.posts.Create(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}

	created, err := p.posts.GetByID(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	p.logger.Info("post created", zap.Int64("post_id", post.ID), zap.Int64("author_id", post.AuthorID))

	c.JSON(http.StatusCreated, p.view(created, false))
}

// Get handles GET /api/posts/:id
func (p *PostAPI) Get(c *gin.Context) {
	post, err := p.fetch(c)
	if err != nil {
		respondError(c, err)
		return
	}

	liked, err := p.likes.IsLiked(c.Request.Context(), currentUserID(c), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.view(post, liked))
}

type updatePostRequest struct {
	Text     string `json:"text" binding:"required,max=4000"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=2048"`
}

// Update handles PUT /api/posts/:id: authors may edit only their own posts
func (p *PostAPI) Update(c *gin.Context) {
	post, err := p.fetch(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if post.AuthorID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post.Text = req.Text
	post.ImageURL = req.ImageURL
	if err := p.posts.Update(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}

	updated, err := p.posts.GetByID(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	liked, err := p.likes.IsLiked(c.Request.Context(), currentUserID(c), post.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p.view(updated, liked))
}

// Delete handles DELETE /api/posts/:id: deletes the post and its likes
func (p *PostAPI) Delete(c *gin.Context) {
	post, err := p.fetch(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if post.AuthorID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
		return
	}

	if err := p.posts.Delete(c.Request.Context(), post.ID); err != nil {
		respondError(c, err)
		return
	}

	p.logger.Info("post deleted", zap.Int64("post_id", post.ID), zap.Int64("author_id", post.AuthorID))

	c.Status(http.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like
func (p *PostAPI) ToggleLike(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	result, err := p.engine.ToggleLike(c.Request.Context(), currentUserID(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// fetch loads the post addressed by the :id route parameter
func (p *PostAPI) fetch(c *gin.Context) (*models.Post, error) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, NewError(http.StatusBadRequest, "invalid post id")
	}

	post, err := p.posts.GetByID(c.Request.Context(), postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, interaction.ErrPostNotFound
	}
	return post, nil
}

func (p *PostAPI) view(post *models.Post, liked bool) feed.PostView {
	return feed.PostView{
		ID:         post.ID,
		Author:     post.Author,
		Text:       post.Text,
		ImageURL:   post.ImageURL,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
		LikesCount: post.LikesCount,
		IsLiked:    liked,
	}
}
