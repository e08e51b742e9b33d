package models

import (
	"time"
)

// Post represents a single microblog post.
//
// LikesCount is a denormalized copy of count(likes where post_id = id).
// It is only ever written inside the interaction engine's transaction,
// guarded by a row lock on the post, so the two stay in step.
type Post struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	AuthorID   int64     `gorm:"not null;index:idx_posts_author_created,priority:1;column:author_id" json:"-"`
	Text       string    `gorm:"type:text;not null;column:text" json:"text"`
	ImageURL   string    `gorm:"type:varchar(2048);column:image_url" json:"image_url,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index:idx_posts_created,sort:desc;index:idx_posts_author_created,priority:2,sort:desc;column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;column:updated_at" json:"updated_at"`
	LikesCount int64     `gorm:"not null;default:0;column:likes_count" json:"likes_count"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
