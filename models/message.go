package models

import (
	"time"
)

// Message represents a direct message sent between two users
type Message struct {
	ID           string    `json:"message_id" gorm:"primaryKey;type:varchar(36)"`
	FromUserID   string    `json:"from_user_id" gorm:"index;type:varchar(36);not null"`
	FromUsername string    `json:"from_username"`
	ToUserID     string    `json:"to_user_id" gorm:"index;type:varchar(36);not null"`
	ToUsername   string    `json:"to_username"`
	MessageText  string    `json:"message_text" gorm:"type:text"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// MessageCreate model for sending a direct message
// @Description model for sending a direct message
type MessageCreate struct {
	RecipientUsername string `json:"recipient_username" binding:"required"`
	MessageText       string `json:"message_text"`
}

func (Message) TableName() string {
	return "messages"
}

// Conversation summarizes the latest exchange with one peer.
type Conversation struct {
	OtherUserID     string    `json:"other_user_id"`
	OtherUsername   string    `json:"other_username"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int64     `json:"unread_count"`
}
