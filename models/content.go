package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccessType string

const (
	AccessFree AccessType = "free"
	AccessPPV  AccessType = "ppv"
)

// Content is an uploaded media item. The file bytes live in the blob store
// under BlobID and are never part of a JSON projection.
type Content struct {
	ID              string          `json:"content_id" gorm:"primaryKey;type:varchar(36)"`
	CreatorID       string          `json:"creator_id" gorm:"index;type:varchar(36);not null"`
	CreatorUsername string          `json:"creator_username"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ContentType     string          `json:"content_type"`
	AccessType      AccessType      `json:"access_type" gorm:"type:varchar(10);not null"`
	Price           decimal.Decimal `json:"price" gorm:"type:numeric(20,8);not null"`
	BlobID          string          `json:"blob_id"`
	FileMimetype    string          `json:"file_mimetype"`
	FileSize        int64           `json:"file_size"`
	PaidViewerCount int             `json:"paid_viewer_count"`
	DeletionLocked  bool            `json:"deletion_locked"`
	IsDeleted       bool            `json:"is_deleted" gorm:"index"`
	IsHidden        bool            `json:"is_hidden"`
	ViewCount       int             `json:"view_count"`
	TipCount        int             `json:"tip_count"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Content) TableName() string {
	return "contents"
}

// Listed reports whether the content belongs in public feeds.
func (c Content) Listed() bool {
	return !c.IsDeleted && !c.IsHidden
}

// ContentUpload model for the multipart upload form
// @Description model for uploading a content item
type ContentUpload struct {
	Title       string `form:"title" example:"Sunset"`
	Description string `form:"description"`
	ContentType string `form:"content_type" example:"photo"`
	AccessType  string `form:"access_type" binding:"required" example:"ppv"`
	Price       string `form:"price" example:"10"`
}
