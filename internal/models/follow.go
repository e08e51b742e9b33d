package models

import (
	"time"
)

// Follow represents a follow relationship: follower follows followee.
// The composite primary key makes the pair unique at the storage layer;
// that constraint, not an application check, is the source of truth for
// "already following".
type Follow struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id"`
	FolloweeID int64     `gorm:"primaryKey;column:followee_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;references:ID"`
	Followee *User `gorm:"foreignKey:FolloweeID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
