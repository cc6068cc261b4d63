package models

import (
	"time"
)

type Comment struct {
	ID          string    `json:"comment_id" gorm:"primaryKey;type:varchar(36)"`
	ContentID   string    `json:"content_id" gorm:"index;type:varchar(36);not null"`
	UserID      string    `json:"user_id" gorm:"type:varchar(36);not null"`
	Username    string    `json:"username"`
	CommentText string    `json:"comment_text" gorm:"type:text"`
	Mentions    []string  `json:"mentions" gorm:"serializer:json"`
	LikeCount   int       `json:"like_count"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

type CommentCreate struct {
	ContentID   string `json:"content_id" binding:"required"`
	CommentText string `json:"comment_text"`
}

// CommentView is a comment as seen by a given viewer.
type CommentView struct {
	Comment
	IsLiked bool `json:"is_liked"`
}

type CommentLike struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CommentID string    `json:"comment_id" gorm:"uniqueIndex:idx_comment_like;type:varchar(36);not null"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_comment_like;type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
