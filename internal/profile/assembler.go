package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pulse-social/pulse/internal/cache"
	pulsedb "github.com/pulse-social/pulse/internal/db"
	"github.com/pulse-social/pulse/internal/feed"
	"github.com/pulse-social/pulse/internal/models"
	"github.com/pulse-social/pulse/pkg/logging"
)

// PageSize is the fixed number of posts per profile page
const PageSize = 20

// countsTTL bounds staleness for cached counts that miss their invalidation
const countsTTL = 5 * time.Minute

// ErrUserNotFound is returned when the requested username does not exist
var ErrUserNotFound = errors.New("user not found")

// Profile is a user's public page as seen by a viewer
type Profile struct {
	User           *models.User    `json:"user"`
	IsFollowing    bool            `json:"is_following"`
	FollowerCount  int64           `json:"follower_count"`
	FollowingCount int64           `json:"following_count"`
	Posts          []feed.PostView `json:"posts"`
	Page           int             `json:"page"`
	TotalPosts     int64           `json:"total_posts"`
	HasMore        bool            `json:"has_more"`
}

type counts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// Assembler computes profile pages. Posts are page-number paginated: a page
// boundary here does not need to survive concurrent inserts the way the live
// feed's does.
type Assembler struct {
	db      *gorm.DB
	cache   *cache.Cache
	users   *pulsedb.UserRepository
	follows *pulsedb.FollowRepository
	likes   *pulsedb.LikeRepository
	logger  *zap.Logger
}

// NewAssembler creates a new profile assembler
func NewAssembler(database *gorm.DB, redisCache *cache.Cache) *Assembler {
	repo := pulsedb.NewRepository(database)
	return &Assembler{
		db:      database,
		cache:   redisCache,
		users:   pulsedb.NewUserRepository(repo),
		follows: pulsedb.NewFollowRepository(repo),
		likes:   pulsedb.NewLikeRepository(repo),
		logger:  logging.WithComponent("profile-assembler"),
	}
}

// GetProfile returns the profile for username as seen by viewerID. viewerID
// may be 0 for anonymous viewers, in which case is_following and is_liked
// are false. Pages start at 1.
func (a *Assembler) GetProfile(ctx context.Context, viewerID int64, username string, page int) (*Profile, error) {
	if page < 1 {
		page = 1
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := &Profile{User: user, Page: page}

	if viewerID != 0 {
		following, err := a.follows.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.IsFollowing = following
	}

	cnt, err := a.getCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	profile.FollowerCount = cnt.Followers
	profile.FollowingCount = cnt.Following

	var posts []models.Post
	err = a.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Author").
		Where("author_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	err = a.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", user.ID).
		Count(&profile.TotalPosts).Error
	if err != nil {
		return nil, err
	}
	profile.HasMore = int64(page*PageSize) < profile.TotalPosts

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	liked, err := a.likes.LikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	profile.Posts = make([]feed.PostView, 0, len(posts))
	for _, p := range posts {
		profile.Posts = append(profile.Posts, feed.PostView{
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

	return profile, nil
}

// getCounts serves follower/following counts through the cache. The counts
// are derivable aggregates, so cache-with-invalidation is safe here; the
// interaction engine deletes the key whenever a follow toggle commits.
func (a *Assembler) getCounts(ctx context.Context, userID int64) (*counts, error) {
	key := cache.ProfileCountsKey(userID)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var cnt counts
		if err := json.Unmarshal([]byte(cached), &cnt); err == nil {
			return &cnt, nil
		}
	}

	var cnt counts
	var err error
	if cnt.Followers, err = a.follows.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if cnt.Following, err = a.follows.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(&cnt); err == nil {
		if err := a.cache.Set(ctx, key, raw, countsTTL); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			a.logger.Warn("failed to cache profile counts",
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}

	return &cnt, nil
}
