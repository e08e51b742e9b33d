package models

import (
	"time"
)

// Like represents a user liking a post, unique per (user, post) pair.
// Rows are created and destroyed only by the interaction engine's toggle;
// deleting a post deletes its likes in the same transaction.
type Like struct {
	UserID    int64     `gorm:"primaryKey;column:user_id"`
	PostID    int64     `gorm:"primaryKey;index:idx_likes_post;column:post_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}
