package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulse-social/pulse/internal/media"
	"github.com/pulse-social/pulse/pkg/logging"
)

// MediaAPI issues presigned upload authorizations
type MediaAPI struct {
	uploader *media.Uploader
	logger   *zap.Logger
}

// NewMediaAPI creates a new media API. A nil uploader is allowed; the
// endpoint then reports media uploads as unavailable.
func NewMediaAPI(uploader *media.Uploader) *MediaAPI {
	return &MediaAPI{
		uploader: uploader,
		logger:   logging.WithComponent("api-media"),
	}
}

type presignRequest struct {
	Filename    string `json:"filename" binding:"required,max=256"`
	ContentType string `json:"content_type" binding:"required,startswith=image/"`
}

// PresignUpload handles POST /api/media/uploads
func (m *MediaAPI) PresignUpload(c *gin.Context) {
	if m.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media uploads are not configured"})
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := m.uploader.PresignUpload(req.Filename, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}

	m.logger.Info("upload presigned",
		zap.Int64("user_id", currentUserID(c)),
		zap.String("key", ticket.Key))

	c.JSON(http.StatusCreated, ticket)
}
