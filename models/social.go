package models

import "time"

type Bookmark struct {
	ID        string    `json:"bookmark_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_bookmark_pair;type:varchar(36);not null"`
	ContentID string    `json:"content_id" gorm:"uniqueIndex:idx_bookmark_pair;type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

type BookmarkRequest struct {
	ContentID string `json:"content_id" binding:"required"`
}

// BookmarkView pairs a bookmark with the bookmarked content.
type BookmarkView struct {
	Bookmark
	Content Content `json:"content"`
}

type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string    `json:"follower_id" gorm:"uniqueIndex:idx_follow_pair;type:varchar(36);not null"`
	FollowingID string    `json:"following_id" gorm:"uniqueIndex:idx_follow_pair;index;type:varchar(36);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}

type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// ToggleResult reports which way a toggle went.
type ToggleResult struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Count  int    `json:"like_count,omitempty"`
}
