package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountFree    AccountType = "free"
	AccountPremium AccountType = "premium"
)

// User is a platform account. Creators and viewers share the same record.
type User struct {
	ID                string          `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	Username          string          `json:"username" gorm:"uniqueIndex;size:20;not null"`
	WalletAddress     string          `json:"wallet_address" gorm:"uniqueIndex;size:42;not null"`
	Provider          string          `json:"provider"`
	AccountType       AccountType     `json:"account_type" gorm:"type:varchar(20)"`
	IsVerified        bool            `json:"is_verified"`
	TotalEarnings     decimal.Decimal `json:"total_earnings" gorm:"type:numeric(20,8);not null"`
	TotalTipsReceived decimal.Decimal `json:"total_tips_received" gorm:"type:numeric(20,8);not null"`
	ViolationCount    int             `json:"violation_count"`
	IsSuspended       bool            `json:"is_suspended"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PublicProfile is the projection of a user visible to anyone.
type PublicProfile struct {
	ID                string          `json:"user_id"`
	Username          string          `json:"username"`
	AccountType       AccountType     `json:"account_type"`
	IsVerified        bool            `json:"is_verified"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	TotalTipsReceived decimal.Decimal `json:"total_tips_received"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:                u.ID,
		Username:          u.Username,
		AccountType:       u.AccountType,
		IsVerified:        u.IsVerified,
		TotalEarnings:     u.TotalEarnings,
		TotalTipsReceived: u.TotalTipsReceived,
		CreatedAt:         u.CreatedAt,
	}
}

// ZkLoginRequest model for the mock ZK login
// @Description model for creating an account through a ZK login provider
type ZkLoginRequest struct {
	Provider string `json:"provider" example:"google"`
	Username string `json:"username" binding:"required" example:"alice"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
}
