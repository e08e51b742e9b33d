package feed

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	pulsedb "github.com/pulse-social/pulse/internal/db"
	"github.com/pulse-social/pulse/internal/models"
	"github.com/pulse-social/pulse/pkg/logging"
)

// PostView is a post annotated for a specific viewer
type PostView struct {
	ID         int64        `json:"id"`
	Author     *models.User `json:"author"`
	Text       string       `json:"text"`
	ImageURL   string       `json:"image_url,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	LikesCount int64        `json:"likes_count"`
	IsLiked    bool         `json:"is_liked"`
}

// Page is one feed page. NextCursor is empty on the last page; PrevCursor is
// empty on the first.
type Page struct {
	Posts      []PostView `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
	PrevCursor string     `json:"prev_cursor,omitempty"`
}

// Assembler computes reverse-chronological post pages. Ordering is always
// (created_at DESC, id DESC); the unique id tie-break makes cursors stable
// under concurrent inserts.
type Assembler struct {
	db     *gorm.DB
	likes  *pulsedb.LikeRepository
	logger *zap.Logger
}

// NewAssembler creates a new feed assembler
func NewAssembler(database *gorm.DB) *Assembler {
	return &Assembler{
		db:     database,
		likes:  pulsedb.NewLikeRepository(pulsedb.NewRepository(database)),
		logger: logging.WithComponent("feed-assembler"),
	}
}

// GetFeed returns one page of posts authored by the viewer's followees.
// An empty followee set yields an empty page, not an error.
func (a *Assembler) GetFeed(ctx context.Context, viewerID int64, cursorToken string) (*Page, error) {
	followees := a.db.Model(&models.Follow{}).
		Select("followee_id").
		Where("follower_id = ?", viewerID)

	query := a.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Author").
		Where("author_id IN (?)", followees)

	return a.assemble(ctx, query, viewerID, cursorToken)
}

// GetRecent returns one page of all posts, newest first. viewerID may be 0
// for anonymous viewers; is_liked is then false everywhere.
func (a *Assembler) GetRecent(ctx context.Context, viewerID int64, cursorToken string) (*Page, error) {
	query := a.db.WithContext(ctx).Model(&models.Post{}).Preload("Author")
	return a.assemble(ctx, query, viewerID, cursorToken)
}

func (a *Assembler) assemble(ctx context.Context, query *gorm.DB, viewerID int64, cursorToken string) (*Page, error) {
	cursor, err := DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}

	switch {
	case cursor == nil:
		query = query.Order("created_at DESC, id DESC")
	case cursor.Reverse:
		query = query.
			Where("created_at > ? OR (created_at = ? AND id > ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID).
			Order("created_at ASC, id ASC")
	default:
		query = query.
			Where("created_at < ? OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID).
			Order("created_at DESC, id DESC")
	}

	// Fetch one extra row to learn whether another page exists.
	var posts []models.Post
	if err := query.Limit(PageSize + 1).Find(&posts).Error; err != nil {
		return nil, err
	}
	more := len(posts) > PageSize
	if more {
		posts = posts[:PageSize]
	}

	if cursor != nil && cursor.Reverse {
		// Reverse reads run ascending; restore newest-first display order.
		for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
			posts[i], posts[j] = posts[j], posts[i]
		}
	}

	page := &Page{Posts: make([]PostView, 0, len(posts))}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	liked, err := a.likes.LikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		page.Posts = append(page.Posts, PostView{
			ID:         p.ID,
			Author:     p.Author,
			Text:       p.Text,
			ImageURL:   p.ImageURL,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
			LikesCount: p.LikesCount,
			IsLiked:    liked[p.ID],
		})
	}

	if len(posts) == 0 {
		return page, nil
	}

	first, last := posts[0], posts[len(posts)-1]
	if cursor != nil && cursor.Reverse {
		// Coming back up: there is always a next page (the one the cursor
		// came from); a previous page exists only if the look-ahead hit.
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		if more {
			page.PrevCursor = Cursor{CreatedAt: first.CreatedAt, ID: first.ID, Reverse: true}.Encode()
		}
	} else {
		if more {
			page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		}
		if cursor != nil {
			page.PrevCursor = Cursor{CreatedAt: first.CreatedAt, ID: first.ID, Reverse: true}.Encode()
		}
	}

	return page, nil
}
