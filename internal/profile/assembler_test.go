package profile

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pulse-social/pulse/internal/cache"
	"github.com/pulse-social/pulse/internal/db"
	"github.com/pulse-social/pulse/internal/interaction"
	"github.com/pulse-social/pulse/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func createPostAt(t *testing.T, gdb *gorm.DB, authorID int64, text string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: at.Truncate(time.Microsecond),
	}
	require.NoError(t, gdb.Create(post).Error)
	return post
}

func follow(t *testing.T, gdb *gorm.DB, followerID, followeeID int64) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}).Error)
}

func TestGetProfile_UserNotFound(t *testing.T) {
	gdb := newTestDB(t)
	assembler := NewAssembler(gdb, nil)

	_, err := assembler.GetProfile(context.Background(), 0, "nobody", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfile_CountsAndFollowState(t *testing.T) {
	gdb := newTestDB(t)
	assembler := NewAssembler(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	carol := createUser(t, gdb, "carol")

	follow(t, gdb, bob.ID, alice.ID)
	follow(t, gdb, carol.ID, alice.ID)
	follow(t, gdb, alice.ID, bob.ID)

	profile, err := assembler.GetProfile(ctx, bob.ID, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.User.ID)
	assert.Equal(t, int64(2), profile.FollowerCount)
	assert.Equal(t, int64(1), profile.FollowingCount)
	assert.True(t, profile.IsFollowing)

	// Anonymous viewers are never "following".
	anon, err := assembler.GetProfile(ctx, 0, "alice", 1)
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)
}

func TestGetProfile_PostPagination(t *testing.T) {
	gdb := newTestDB(t)
	assembler := NewAssembler(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")

	const total = 25
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < total; i++ {
		createPostAt(t, gdb, alice.ID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Second))
	}

	page1, err := assembler.GetProfile(ctx, 0, "alice", 1)
	require.NoError(t, err)
	require.Len(t, page1.Posts, PageSize)
	assert.Equal(t, "post 24", page1.Posts[0].Text)
	assert.Equal(t, int64(total), page1.TotalPosts)
	assert.True(t, page1.HasMore)
	assert.Equal(t, 1, page1.Page)

	page2, err := assembler.GetProfile(ctx, 0, "alice", 2)
	require.NoError(t, err)
	require.Len(t, page2.Posts, total-PageSize)
	assert.Equal(t, "post 4", page2.Posts[0].Text)
	assert.False(t, page2.HasMore)
	assert.Equal(t, 2, page2.Page)

	// Past the last page: empty posts, not an error.
	page3, err := assembler.GetProfile(ctx, 0, "alice", 3)
	require.NoError(t, err)
	assert.Empty(t, page3.Posts)
	assert.False(t, page3.HasMore)

	// Page numbers below 1 clamp to the first page.
	clamped, err := assembler.GetProfile(ctx, 0, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
	require.Len(t, clamped.Posts, PageSize)
}

func TestGetProfile_LikedPosts(t *testing.T) {
	gdb := newTestDB(t)
	assembler := NewAssembler(gdb, nil)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	base := time.Now().UTC()
	liked := createPostAt(t, gdb, alice.ID, "liked", base)
	createPostAt(t, gdb, alice.ID, "not liked", base.Add(time.Second))
	require.NoError(t, gdb.Create(&models.Like{UserID: bob.ID, PostID: liked.ID}).Error)

	profile, err := assembler.GetProfile(ctx, bob.ID, "alice", 1)
	require.NoError(t, err)
	require.Len(t, profile.Posts, 2)
	assert.False(t, profile.Posts[0].IsLiked)
	assert.True(t, profile.Posts[1].IsLiked)
}

func TestGetProfile_CountsRefreshAfterFollowToggle(t *testing.T) {
	gdb := newTestDB(t)
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	redisCache := cache.NewWithClient(client)

	assembler := NewAssembler(gdb, redisCache)
	engine := interaction.NewEngine(gdb, redisCache)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	// Prime the cache with zero counts.
	profile, err := assembler.GetProfile(ctx, 0, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.FollowerCount)

	// A follow toggle must invalidate the cached counts, not wait out the TTL.
	_, err = engine.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	profile, err = assembler.GetProfile(ctx, 0, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.FollowerCount)
}
