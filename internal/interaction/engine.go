package interaction

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulse-social/pulse/internal/cache"
	"github.com/pulse-social/pulse/internal/models"
	"github.com/pulse-social/pulse/pkg/logging"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	ErrFollowSelf   = errors.New("cannot follow self")
	// ErrConflict surfaces a storage-level unique-constraint race that slipped
	// past the existence check inside the transaction.
	ErrConflict = errors.New("conflicting concurrent toggle")
)

// Follow toggle statuses
const (
	StatusFollowed   = "followed"
	StatusUnfollowed = "unfollowed"
)

// Engine toggles like and follow relations. All shared state lives in the
// database; the only synchronization used is row locking and transaction
// isolation.
type Engine struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
}

// NewEngine creates a new interaction engine
func NewEngine(database *gorm.DB, redisCache *cache.Cache) *Engine {
	return &Engine{
		db:     database,
		cache:  redisCache,
		logger: logging.WithComponent("interaction-engine"),
	}
}

// LikeResult is the outcome of a like toggle. LikesCount is re-read from the
// post row before commit, never computed in process.
type LikeResult struct {
	LikesCount int64 `json:"likes_count"`
	IsLiked    bool  `json:"is_liked"`
}

// FollowResult is the outcome of a follow toggle
type FollowResult struct {
	Status      string `json:"status"`
	IsFollowing bool   `json:"is_following"`
}

// ToggleLike likes the post if the actor has not liked it, unlikes it
// otherwise. The whole read-modify-write runs in one transaction holding a
// row lock on the post, so likes_count cannot drift under concurrent toggles.
func (e *Engine) ToggleLike(ctx context.Context, actorID, postID int64) (*LikeResult, error) {
	var result LikeResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		var like models.Like
		err := tx.Where("user_id = ? AND post_id = ?", actorID, postID).
			First(&like).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{UserID: actorID, PostID: postID}).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrConflict
				}
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
			result.IsLiked = true

		case err != nil:
			return err

		default:
			if err := tx.Delete(&models.Like{UserID: actorID, PostID: postID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
				return err
			}
			result.IsLiked = false
		}

		// Authoritative re-read: the increment above is evaluated by the
		// database, so the in-process post.LikesCount is stale.
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Select("likes_count").Scan(&result.LikesCount).Error
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("like toggled",
		zap.Int64("actor_id", actorID),
		zap.Int64("post_id", postID),
		zap.Bool("is_liked", result.IsLiked),
		zap.Int64("likes_count", result.LikesCount))

	return &result, nil
}

// ToggleFollow follows the user if the actor does not follow them, unfollows
// otherwise. The existence check and the mutation run in one transaction; the
// composite unique key on (follower, followee) backstops concurrent duplicate
// toggles.
func (e *Engine) ToggleFollow(ctx context.Context, actorID, followeeID int64) (*FollowResult, error) {
	if actorID == followeeID {
		return nil, ErrFollowSelf
	}

	var result FollowResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var followee models.User
		if err := tx.First(&followee, followeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var follow models.Follow
		err := tx.Where("follower_id = ? AND followee_id = ?", actorID, followeeID).
			First(&follow).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Follow{FollowerID: actorID, FolloweeID: followeeID}).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrConflict
				}
				return err
			}
			result = FollowResult{Status: StatusFollowed, IsFollowing: true}

		case err != nil:
			return err

		default:
			if err := tx.Delete(&models.Follow{FollowerID: actorID, FolloweeID: followeeID}).Error; err != nil {
				return err
			}
			result = FollowResult{Status: StatusUnfollowed, IsFollowing: false}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cached follower/following counts for both sides are now stale.
	if err := e.cache.Delete(ctx,
		cache.ProfileCountsKey(actorID),
		cache.ProfileCountsKey(followeeID),
	); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		e.logger.Warn("failed to invalidate profile counts",
			zap.Int64("actor_id", actorID),
			zap.Int64("followee_id", followeeID),
			zap.Error(err))
	}

	e.logger.Debug("follow toggled",
		zap.Int64("actor_id", actorID),
		zap.Int64("followee_id", followeeID),
		zap.String("status", result.Status))

	return &result, nil
}
