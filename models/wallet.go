package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's spendable balance and the amount locked in pending
// withdrawals. One per user, created lazily on first credit or debit.
type Wallet struct {
	UserID         string          `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:numeric(20,8);not null"`
	PendingBalance decimal.Decimal `json:"pending_balance" gorm:"type:numeric(20,8);not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Total is balance plus pending balance.
func (w Wallet) Total() decimal.Decimal {
	return w.Balance.Add(w.PendingBalance)
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentCrypto     PaymentMethod = "crypto"
)

type Deposit struct {
	ID              string          `json:"transaction_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(20,8);not null"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20)"`
	Status          string          `json:"status" gorm:"type:varchar(20)"`
	TransactionHash *string         `json:"transaction_hash"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Deposit) TableName() string {
	return "deposits"
}

type DepositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

type WithdrawalMethod string

const (
	WithdrawCrypto WithdrawalMethod = "crypto"
	WithdrawBank   WithdrawalMethod = "bank"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalCancelled WithdrawalStatus = "cancelled"
)

// Withdrawal moves funds out of the platform. It stays pending until a
// settlement event completes it or the owner cancels it.
type Withdrawal struct {
	ID            string           `json:"withdrawal_id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string           `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Amount        decimal.Decimal  `json:"amount" gorm:"type:numeric(20,8);not null"`
	Method        WithdrawalMethod `json:"withdrawal_method" gorm:"type:varchar(10)"`
	CryptoAddress *string          `json:"crypto_address"`
	BankDetails   *string          `json:"bank_details"`
	Status        WithdrawalStatus `json:"status" gorm:"index;type:varchar(20)"`
	SettleAfter   time.Time        `json:"settle_after" gorm:"index"`
	ProcessedAt   *time.Time       `json:"processed_at"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

type WithdrawalRequest struct {
	Amount           decimal.Decimal  `json:"amount"`
	WithdrawalMethod WithdrawalMethod `json:"withdrawal_method"`
	CryptoAddress    string           `json:"crypto_address"`
	BankDetails      string           `json:"bank_details"`
}

type CancelWithdrawalRequest struct {
	WithdrawalID string `json:"withdrawal_id" binding:"required"`
}

type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxPurchase    TransactionType = "purchase"
	TxTipSent     TransactionType = "tip_sent"
	TxTipReceived TransactionType = "tip_received"
	TxSale        TransactionType = "sale"
	TxWithdrawal  TransactionType = "withdrawal"
)

// Transaction is one line of a reconstructed transaction history. It is a
// projection and is never stored.
type Transaction struct {
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SaleEarning struct {
	ContentID   string          `json:"content_id"`
	Amount      decimal.Decimal `json:"amount"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

type TipEarning struct {
	TipID     string          `json:"tip_id"`
	Amount    decimal.Decimal `json:"amount"`
	FromUser  string          `json:"from_user"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
}

type Earnings struct {
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	TotalTipsReceived decimal.Decimal `json:"total_tips_received"`
	ContentSales      []SaleEarning   `json:"content_sales"`
	Tips              []TipEarning    `json:"tips"`
}
