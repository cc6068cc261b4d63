package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase grants the buyer permanent access to a pay-per-view content.
type Purchase struct {
	ID              string          `json:"purchase_id" gorm:"primaryKey;type:varchar(36)"`
	ContentID       string          `json:"content_id" gorm:"uniqueIndex:idx_purchase_buyer_content;type:varchar(36);not null"`
	BuyerID         string          `json:"buyer_id" gorm:"uniqueIndex:idx_purchase_buyer_content;type:varchar(36);not null"`
	CreatorID       string          `json:"creator_id" gorm:"index;type:varchar(36);not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(20,8);not null"`
	PlatformFee     decimal.Decimal `json:"platform_fee" gorm:"type:numeric(20,8);not null"`
	CreatorAmount   decimal.Decimal `json:"creator_amount" gorm:"type:numeric(20,8);not null"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionHash string          `json:"transaction_hash"`
	PurchasedAt     time.Time       `json:"purchased_at"`
}

func (Purchase) TableName() string {
	return "purchases"
}

type PurchaseRequest struct {
	ContentID     string `json:"content_id" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// Tip is a voluntary payment from one user to another.
type Tip struct {
	ID              string          `json:"tip_id" gorm:"primaryKey;type:varchar(36)"`
	FromUserID      string          `json:"from_user_id" gorm:"index;type:varchar(36);not null"`
	ToUserID        string          `json:"to_user_id" gorm:"index;type:varchar(36);not null"`
	ContentID       *string         `json:"content_id" gorm:"type:varchar(36)"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(20,8);not null"`
	PlatformFee     decimal.Decimal `json:"platform_fee" gorm:"type:numeric(20,8);not null"`
	RecipientAmount decimal.Decimal `json:"recipient_amount" gorm:"type:numeric(20,8);not null"`
	Message         string          `json:"message"`
	TransactionHash string          `json:"transaction_hash"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Tip) TableName() string {
	return "tips"
}

type TipRequest struct {
	RecipientUsername string          `json:"recipient_username" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
	Message           string          `json:"message"`
	ContentID         string          `json:"content_id"`
}

// PurchaseView pairs a purchase with the purchased content.
type PurchaseView struct {
	Purchase
	Content Content `json:"content"`
}
