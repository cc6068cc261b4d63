// Package store holds the persistence layer behind an explicit repository
// interface. MemoryStore is the default; GormStore persists to PostgreSQL.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Macwinner1/Xecret/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByWallet(ctx context.Context, address string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error)
}

// ContentFilter narrows ListContents. Zero value lists everything.
type ContentFilter struct {
	CreatorID     string
	ListedOnly    bool
	IncludeDelete bool
}

type ContentStore interface {
	CreateContent(ctx context.Context, c *models.Content) error
	GetContent(ctx context.Context, id string) (*models.Content, error)
	UpdateContent(ctx context.Context, id string, fn func(*models.Content) error) (*models.Content, error)
	ListContents(ctx context.Context, filter ContentFilter) ([]models.Content, error)
}

type PurchaseStore interface {
	CreatePurchase(ctx context.Context, p *models.Purchase) error
	FindPurchase(ctx context.Context, buyerID, contentID string) (*models.Purchase, error)
	ListPurchasesByBuyer(ctx context.Context, buyerID string) ([]models.Purchase, error)
	ListPurchasesByCreator(ctx context.Context, creatorID string) ([]models.Purchase, error)
}

type TipStore interface {
	CreateTip(ctx context.Context, t *models.Tip) error
	ListTipsSent(ctx context.Context, userID string) ([]models.Tip, error)
	ListTipsReceived(ctx context.Context, userID string) ([]models.Tip, error)
}

type WalletStore interface {
	// GetWallet returns ErrNotFound when the user never had a wallet.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// UpdateWallet creates the wallet on first use, then applies fn atomically.
	UpdateWallet(ctx context.Context, userID string, fn func(*models.Wallet) error) (*models.Wallet, error)
	CreateDeposit(ctx context.Context, d *models.Deposit) error
	ListDeposits(ctx context.Context, userID string) ([]models.Deposit, error)
	CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error
	GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, id string, fn func(*models.Withdrawal) error) (*models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error)
	// ListDueWithdrawals returns pending withdrawals whose settle time is not after now.
	ListDueWithdrawals(ctx context.Context, now time.Time) ([]models.Withdrawal, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *models.StreamSession) error
	GetSessionByKey(ctx context.Context, key string) (*models.StreamSession, error)
	UpdateSession(ctx context.Context, id string, fn func(*models.StreamSession) error) (*models.StreamSession, error)
	CreateViolation(ctx context.Context, v *models.Violation) error
	CountViolations(ctx context.Context, userID string) (int64, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error)
	ListComments(ctx context.Context, contentID string) ([]models.Comment, error)
	FindCommentLike(ctx context.Context, commentID, userID string) (*models.CommentLike, error)
	CreateCommentLike(ctx context.Context, l *models.CommentLike) error
	DeleteCommentLike(ctx context.Context, id string) error
}

type GraphStore interface {
	FindBookmark(ctx context.Context, userID, contentID string) (*models.Bookmark, error)
	CreateBookmark(ctx context.Context, b *models.Bookmark) error
	DeleteBookmark(ctx context.Context, id string) error
	ListBookmarks(ctx context.Context, userID string) ([]models.Bookmark, error)
	FindFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error)
	CreateFollow(ctx context.Context, f *models.Follow) error
	DeleteFollow(ctx context.Context, id string) error
	CountFollows(ctx context.Context, userID string) (models.FollowStats, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	// ListConversation returns messages between a and b, oldest first.
	ListConversation(ctx context.Context, a, b string) ([]models.Message, error)
	// ListMessagesFor returns every message sent or received by userID, newest first.
	ListMessagesFor(ctx context.Context, userID string) ([]models.Message, error)
	MarkRead(ctx context.Context, readerID, fromUserID string) error
	// CountUnread with an empty fromUserID counts across all senders.
	CountUnread(ctx context.Context, readerID, fromUserID string) (int64, error)
}

// Repository is the full capability set handed to services.
type Repository interface {
	UserStore
	ContentStore
	PurchaseStore
	TipStore
	WalletStore
	SessionStore
	CommentStore
	GraphStore
	MessageStore

	// Transaction runs fn with a repository whose writes are applied as one
	// unit relative to other transactions.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}
