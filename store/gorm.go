package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Macwinner1/Xecret/models"
)

// GormStore persists entities through gorm. Open the *gorm.DB with
// TranslateError enabled so unique violations surface as ErrDuplicate.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// lockedUpdate loads the row matching where under FOR UPDATE, applies fn and
// saves the result inside one transaction.
func lockedUpdate[T any](ctx context.Context, db *gorm.DB, fn func(*T) error, where string, args ...interface{}) (*T, error) {
	var row T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(where, args...).First(&row).Error; err != nil {
			return err
		}
		if err := fn(&row); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &row, nil
}

func first[T any](ctx context.Context, db *gorm.DB, where string, args ...interface{}) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where(where, args...).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	return &row, nil
}

func find[T any](ctx context.Context, db *gorm.DB, order string, where string, args ...interface{}) ([]T, error) {
	rows := []T{}
	if err := db.WithContext(ctx).Where(where, args...).Order(order).Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	return rows, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id string) error {
	var row T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&row)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	newID(&u.ID)
	return mapErr(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, s.db, "id = ?", id)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, s.db, "username = ?", username)
}

func (s *GormStore) GetUserByWallet(ctx context.Context, address string) (*models.User, error) {
	return first[models.User](ctx, s.db, "wallet_address = ?", address)
}

func (s *GormStore) UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	return lockedUpdate(ctx, s.db, fn, "id = ?", id)
}

// Contents

func (s *GormStore) CreateContent(ctx context.Context, c *models.Content) error {
	newID(&c.ID)
	return mapErr(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) GetContent(ctx context.Context, id string) (*models.Content, error) {
	return first[models.Content](ctx, s.db, "id = ?", id)
}

func (s *GormStore) UpdateContent(ctx context.Context, id string, fn func(*models.Content) error) (*models.Content, error) {
	return lockedUpdate(ctx, s.db, fn, "id = ?", id)
}

func (s *GormStore) ListContents(ctx context.Context, filter ContentFilter) ([]models.Content, error) {
	q := s.db.WithContext(ctx).Model(&models.Content{})
	if filter.CreatorID != "" {
		q = q.Where("creator_id = ?", filter.CreatorID)
	}
	if !filter.IncludeDelete {
		q = q.Where("is_deleted = ?", false)
	}
	if filter.ListedOnly {
		q = q.Where("is_hidden = ?", false)
	}
	rows := []models.Content{}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	return rows, nil
}

// Purchases and tips

func (s *GormStore) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	newID(&p.ID)
	return mapErr(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) FindPurchase(ctx context.Context, buyerID, contentID string) (*models.Purchase, error) {
	return first[models.Purchase](ctx, s.db, "buyer_id = ? AND content_id = ?", buyerID, contentID)
}

func (s *GormStore) ListPurchasesByBuyer(ctx context.Context, buyerID string) ([]models.Purchase, error) {
	return find[models.Purchase](ctx, s.db, "purchased_at DESC", "buyer_id = ?", buyerID)
}

func (s *GormStore) ListPurchasesByCreator(ctx context.Context, creatorID string) ([]models.Purchase, error) {
	return find[models.Purchase](ctx, s.db, "purchased_at DESC", "creator_id = ?", creatorID)
}

func (s *GormStore) CreateTip(ctx context.Context, t *models.Tip) error {
	newID(&t.ID)
	return mapErr(s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) ListTipsSent(ctx context.Context, userID string) ([]models.Tip, error) {
	return find[models.Tip](ctx, s.db, "created_at DESC", "from_user_id = ?", userID)
}

func (s *GormStore) ListTipsReceived(ctx context.Context, userID string) ([]models.Tip, error) {
	return find[models.Tip](ctx, s.db, "created_at DESC", "to_user_id = ?", userID)
}

// Wallets

func (s *GormStore) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	return first[models.Wallet](ctx, s.db, "user_id = ?", userID)
}

func (s *GormStore) UpdateWallet(ctx context.Context, userID string, fn func(*models.Wallet) error) (*models.Wallet, error) {
	var w models.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(models.Wallet{UserID: userID}).
			FirstOrCreate(&w).Error
		if err != nil {
			return err
		}
		if err := fn(&w); err != nil {
			return err
		}
		w.UserID = userID
		return tx.Save(&w).Error
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &w, nil
}

func (s *GormStore) CreateDeposit(ctx context.Context, d *models.Deposit) error {
	newID(&d.ID)
	return mapErr(s.db.WithContext(ctx).Create(d).Error)
}

func (s *GormStore) ListDeposits(ctx context.Context, userID string) ([]models.Deposit, error) {
	return find[models.Deposit](ctx, s.db, "created_at DESC", "user_id = ?", userID)
}

func (s *GormStore) CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	newID(&w.ID)
	return mapErr(s.db.WithContext(ctx).Create(w).Error)
}

func (s *GormStore) GetWithdrawal(ctx context.Context, id string) (*models.Withdrawal, error) {
	return first[models.Withdrawal](ctx, s.db, "id = ?", id)
}

func (s *GormStore) UpdateWithdrawal(ctx context.Context, id string, fn func(*models.Withdrawal) error) (*models.Withdrawal, error) {
	return lockedUpdate(ctx, s.db, fn, "id = ?", id)
}

func (s *GormStore) ListWithdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	return find[models.Withdrawal](ctx, s.db, "created_at DESC", "user_id = ?", userID)
}

func (s *GormStore) ListDueWithdrawals(ctx context.Context, now time.Time) ([]models.Withdrawal, error) {
	return find[models.Withdrawal](ctx, s.db, "settle_after ASC", "status = ? AND settle_after <= ?", models.WithdrawalPending, now)
}

// Sessions and violations

func (s *GormStore) CreateSession(ctx context.Context, ss *models.StreamSession) error {
	newID(&ss.ID)
	return mapErr(s.db.WithContext(ctx).Create(ss).Error)
}

func (s *GormStore) GetSessionByKey(ctx context.Context, key string) (*models.StreamSession, error) {
	return first[models.StreamSession](ctx, s.db, "session_key = ?", key)
}

func (s *GormStore) UpdateSession(ctx context.Context, id string, fn func(*models.StreamSession) error) (*models.StreamSession, error) {
	return lockedUpdate(ctx, s.db, fn, "id = ?", id)
}

func (s *GormStore) CreateViolation(ctx context.Context, v *models.Violation) error {
	newID(&v.ID)
	return mapErr(s.db.WithContext(ctx).Create(v).Error)
}

func (s *GormStore) CountViolations(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Violation{}).Where("user_id = ?", userID).Count(&n).Error
	return n, mapErr(err)
}

// Comments

func (s *GormStore) CreateComment(ctx context.Context, c *models.Comment) error {
	newID(&c.ID)
	return mapErr(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return first[models.Comment](ctx, s.db, "id = ?", id)
}

func (s *GormStore) UpdateComment(ctx context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	return lockedUpdate(ctx, s.db, fn, "id = ?", id)
}

func (s *GormStore) ListComments(ctx context.Context, contentID string) ([]models.Comment, error) {
	return find[models.Comment](ctx, s.db, "created_at DESC", "content_id = ? AND is_deleted = ?", contentID, false)
}

func (s *GormStore) FindCommentLike(ctx context.Context, commentID, userID string) (*models.CommentLike, error) {
	return first[models.CommentLike](ctx, s.db, "comment_id = ? AND user_id = ?", commentID, userID)
}

func (s *GormStore) CreateCommentLike(ctx context.Context, l *models.CommentLike) error {
	newID(&l.ID)
	return mapErr(s.db.WithContext(ctx).Create(l).Error)
}

func (s *GormStore) DeleteCommentLike(ctx context.Context, id string) error {
	return deleteByID[models.CommentLike](ctx, s.db, id)
}

// Bookmarks and follows

func (s *GormStore) FindBookmark(ctx context.Context, userID, contentID string) (*models.Bookmark, error) {
	return first[models.Bookmark](ctx, s.db, "user_id = ? AND content_id = ?", userID, contentID)
}

func (s *GormStore) CreateBookmark(ctx context.Context, b *models.Bookmark) error {
	newID(&b.ID)
	return mapErr(s.db.WithContext(ctx).Create(b).Error)
}

func (s *GormStore) DeleteBookmark(ctx context.Context, id string) error {
	return deleteByID[models.Bookmark](ctx, s.db, id)
}

func (s *GormStore) ListBookmarks(ctx context.Context, userID string) ([]models.Bookmark, error) {
	return find[models.Bookmark](ctx, s.db, "created_at DESC", "user_id = ?", userID)
}

func (s *GormStore) FindFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	return first[models.Follow](ctx, s.db, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (s *GormStore) CreateFollow(ctx context.Context, f *models.Follow) error {
	newID(&f.ID)
	return mapErr(s.db.WithContext(ctx).Create(f).Error)
}

func (s *GormStore) DeleteFollow(ctx context.Context, id string) error {
	return deleteByID[models.Follow](ctx, s.db, id)
}

func (s *GormStore) CountFollows(ctx context.Context, userID string) (models.FollowStats, error) {
	var stats models.FollowStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&stats.Followers).Error; err != nil {
		return stats, mapErr(err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&stats.Following).Error; err != nil {
		return stats, mapErr(err)
	}
	return stats, nil
}

// Messages

func (s *GormStore) CreateMessage(ctx context.Context, m *models.Message) error {
	newID(&m.ID)
	return mapErr(s.db.WithContext(ctx).Create(m).Error)
}

func (s *GormStore) ListConversation(ctx context.Context, a, b string) ([]models.Message, error) {
	return find[models.Message](ctx, s.db, "created_at ASC",
		"(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a)
}

func (s *GormStore) ListMessagesFor(ctx context.Context, userID string) ([]models.Message, error) {
	return find[models.Message](ctx, s.db, "created_at DESC", "from_user_id = ? OR to_user_id = ?", userID, userID)
}

func (s *GormStore) MarkRead(ctx context.Context, readerID, fromUserID string) error {
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("to_user_id = ? AND from_user_id = ? AND is_read = ?", readerID, fromUserID, false).
		Update("is_read", true).Error
	return mapErr(err)
}

func (s *GormStore) CountUnread(ctx context.Context, readerID, fromUserID string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Message{}).Where("to_user_id = ? AND is_read = ?", readerID, false)
	if fromUserID != "" {
		q = q.Where("from_user_id = ?", fromUserID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, mapErr(err)
}

// Ping checks that the database answers.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ Repository = (*GormStore)(nil)
