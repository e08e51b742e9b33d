package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulse-social/pulse/internal/feed"
)

// FeedAPI serves the authenticated user's home feed
type FeedAPI struct {
	feed *feed.Assembler
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(feedAssembler *feed.Assembler) *FeedAPI {
	return &FeedAPI{feed: feedAssembler}
}

// GetFeed handles GET /api/feed: posts from followed users, newest first,
// cursor-paginated
func (f *FeedAPI) GetFeed(c *gin.Context) {
	page, err := f.feed.GetFeed(c.Request.Context(), currentUserID(c), c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
