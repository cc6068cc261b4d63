package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Macwinner1/Xecret/models"
)

// MemoryStore keeps every entity in process memory. Reads and writes are
// guarded by dataMu; Transaction callers are serialized by txMu so a
// read-check-write sequence inside a transaction is never interleaved with
// another transaction.
//
// Transactions do not roll back. Services validate before their first write.
type MemoryStore struct {
	txMu   sync.Mutex
	dataMu sync.RWMutex

	seq   uint64
	order map[string]uint64

	users       map[string]models.User
	usernames   map[string]string
	walletAddrs map[string]string

	contents    map[string]models.Content
	purchases   map[string]models.Purchase
	purchaseIdx map[string]string
	tips        map[string]models.Tip

	wallets     map[string]models.Wallet
	deposits    map[string]models.Deposit
	withdrawals map[string]models.Withdrawal

	sessions    map[string]models.StreamSession
	sessionKeys map[string]string
	violations  map[string]models.Violation

	comments     map[string]models.Comment
	commentLikes map[string]models.CommentLike
	likeIdx      map[string]string

	bookmarks   map[string]models.Bookmark
	bookmarkIdx map[string]string
	follows     map[string]models.Follow
	followIdx   map[string]string

	messages map[string]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		order:        map[string]uint64{},
		users:        map[string]models.User{},
		usernames:    map[string]string{},
		walletAddrs:  map[string]string{},
		contents:     map[string]models.Content{},
		purchases:    map[string]models.Purchase{},
		purchaseIdx:  map[string]string{},
		tips:         map[string]models.Tip{},
		wallets:      map[string]models.Wallet{},
		deposits:     map[string]models.Deposit{},
		withdrawals:  map[string]models.Withdrawal{},
		sessions:     map[string]models.StreamSession{},
		sessionKeys:  map[string]string{},
		violations:   map[string]models.Violation{},
		comments:     map[string]models.Comment{},
		commentLikes: map[string]models.CommentLike{},
		likeIdx:      map[string]string{},
		bookmarks:    map[string]models.Bookmark{},
		bookmarkIdx:  map[string]string{},
		follows:      map[string]models.Follow{},
		followIdx:    map[string]string{},
		messages:     map[string]models.Message{},
	}
}

func pairKey(a, b string) string {
	return a + "|" + b
}

// stamp assigns an id and creation time when missing and records insertion
// order. Caller holds dataMu.
func (s *MemoryStore) stamp(id *string, created *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = time.Now()
	}
	s.seq++
	s.order[*id] = s.seq
}

// Transaction serializes fn against other transactions.
func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(memoryTx{s})
}

// memoryTx is the repository handed to a transaction callback. Nested
// transactions join the outer one.
type memoryTx struct {
	*MemoryStore
}

func (t memoryTx) Transaction(_ context.Context, fn func(tx Repository) error) error {
	return fn(t)
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	if _, ok := s.usernames[u.Username]; ok {
		return ErrDuplicate
	}
	if _, ok := s.walletAddrs[u.WalletAddress]; ok && u.WalletAddress != "" {
		return ErrDuplicate
	}
	s.stamp(&u.ID, &u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	s.usernames[u.Username] = u.ID
	if u.WalletAddress != "" {
		s.walletAddrs[u.WalletAddress] = u.ID
	}
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.dataMu.RLock()
	id, ok := s.usernames[username]
	s.dataMu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) GetUserByWallet(ctx context.Context, address string) (*models.User, error) {
	s.dataMu.RLock()
	id, ok := s.walletAddrs[address]
	s.dataMu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	oldName := u.Username
	if err := fn(&u); err != nil {
		return nil, err
	}
	if u.Username != oldName {
		if _, taken := s.usernames[u.Username]; taken {
			return nil, ErrDuplicate
		}
		delete(s.usernames, oldName)
		s.usernames[u.Username] = u.ID
	}
	u.ID = id
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

// Contents

func (s *MemoryStore) CreateContent(_ context.Context, c *models.Content) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&c.ID, &c.CreatedAt)
	c.UpdatedAt = c.CreatedAt
	s.contents[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetContent(_ context.Context, id string) (*models.Content, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) UpdateContent(_ context.Context, id string, fn func(*models.Content) error) (*models.Content, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.ID = id
	c.UpdatedAt = time.Now()
	s.contents[id] = c
	return &c, nil
}

func (s *MemoryStore) ListContents(_ context.Context, filter ContentFilter) ([]models.Content, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Content{}
	ids := []string{}
	for id, c := range s.contents {
		if filter.CreatorID != "" && c.CreatorID != filter.CreatorID {
			continue
		}
		if c.IsDeleted && !filter.IncludeDelete {
			continue
		}
		if filter.ListedOnly && !c.Listed() {
			continue
		}
		out = append(out, c)
		ids = append(ids, id)
	}
	sortNewest(s, out, ids, func(c models.Content) time.Time { return c.CreatedAt })
	return out, nil
}

// sortNewest sorts items and their parallel ids newest first.
func sortNewest[T any](s *MemoryStore, items []T, ids []string, at func(T) time.Time) {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := at(items[idx[a]]), at(items[idx[b]])
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return s.order[ids[idx[a]]] > s.order[ids[idx[b]]]
	})
	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

// Purchases and tips

func (s *MemoryStore) CreatePurchase(_ context.Context, p *models.Purchase) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	key := pairKey(p.BuyerID, p.ContentID)
	if _, ok := s.purchaseIdx[key]; ok {
		return ErrDuplicate
	}
	s.stamp(&p.ID, &p.PurchasedAt)
	s.purchases[p.ID] = *p
	s.purchaseIdx[key] = p.ID
	return nil
}

func (s *MemoryStore) FindPurchase(_ context.Context, buyerID, contentID string) (*models.Purchase, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	id, ok := s.purchaseIdx[pairKey(buyerID, contentID)]
	if !ok {
		return nil, ErrNotFound
	}
	p := s.purchases[id]
	return &p, nil
}

func (s *MemoryStore) listPurchases(match func(models.Purchase) bool) []models.Purchase {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Purchase{}
	ids := []string{}
	for id, p := range s.purchases {
		if match(p) {
			out = append(out, p)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(p models.Purchase) time.Time { return p.PurchasedAt })
	return out
}

func (s *MemoryStore) ListPurchasesByBuyer(_ context.Context, buyerID string) ([]models.Purchase, error) {
	return s.listPurchases(func(p models.Purchase) bool { return p.BuyerID == buyerID }), nil
}

func (s *MemoryStore) ListPurchasesByCreator(_ context.Context, creatorID string) ([]models.Purchase, error) {
	return s.listPurchases(func(p models.Purchase) bool { return p.CreatorID == creatorID }), nil
}

func (s *MemoryStore) CreateTip(_ context.Context, t *models.Tip) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&t.ID, &t.CreatedAt)
	s.tips[t.ID] = *t
	return nil
}

func (s *MemoryStore) listTips(match func(models.Tip) bool) []models.Tip {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Tip{}
	ids := []string{}
	for id, t := range s.tips {
		if match(t) {
			out = append(out, t)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(t models.Tip) time.Time { return t.CreatedAt })
	return out
}

func (s *MemoryStore) ListTipsSent(_ context.Context, userID string) ([]models.Tip, error) {
	return s.listTips(func(t models.Tip) bool { return t.FromUserID == userID }), nil
}

func (s *MemoryStore) ListTipsReceived(_ context.Context, userID string) ([]models.Tip, error) {
	return s.listTips(func(t models.Tip) bool { return t.ToUserID == userID }), nil
}

// Wallets

func (s *MemoryStore) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	w, ok := s.wallets[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (s *MemoryStore) UpdateWallet(_ context.Context, userID string, fn func(*models.Wallet) error) (*models.Wallet, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		now := time.Now()
		w = models.Wallet{UserID: userID, CreatedAt: now}
	}
	if err := fn(&w); err != nil {
		return nil, err
	}
	w.UserID = userID
	w.UpdatedAt = time.Now()
	s.wallets[userID] = w
	return &w, nil
}

func (s *MemoryStore) CreateDeposit(_ context.Context, d *models.Deposit) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&d.ID, &d.CreatedAt)
	s.deposits[d.ID] = *d
	return nil
}

func (s *MemoryStore) ListDeposits(_ context.Context, userID string) ([]models.Deposit, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Deposit{}
	ids := []string{}
	for id, d := range s.deposits {
		if d.UserID == userID {
			out = append(out, d)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(d models.Deposit) time.Time { return d.CreatedAt })
	return out, nil
}

func (s *MemoryStore) CreateWithdrawal(_ context.Context, w *models.Withdrawal) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&w.ID, &w.CreatedAt)
	s.withdrawals[w.ID] = *w
	return nil
}

func (s *MemoryStore) GetWithdrawal(_ context.Context, id string) (*models.Withdrawal, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	w, ok := s.withdrawals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (s *MemoryStore) UpdateWithdrawal(_ context.Context, id string, fn func(*models.Withdrawal) error) (*models.Withdrawal, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	w, ok := s.withdrawals[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&w); err != nil {
		return nil, err
	}
	w.ID = id
	s.withdrawals[id] = w
	return &w, nil
}

func (s *MemoryStore) listWithdrawals(match func(models.Withdrawal) bool) []models.Withdrawal {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Withdrawal{}
	ids := []string{}
	for id, w := range s.withdrawals {
		if match(w) {
			out = append(out, w)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(w models.Withdrawal) time.Time { return w.CreatedAt })
	return out
}

func (s *MemoryStore) ListWithdrawals(_ context.Context, userID string) ([]models.Withdrawal, error) {
	return s.listWithdrawals(func(w models.Withdrawal) bool { return w.UserID == userID }), nil
}

func (s *MemoryStore) ListDueWithdrawals(_ context.Context, now time.Time) ([]models.Withdrawal, error) {
	due := s.listWithdrawals(func(w models.Withdrawal) bool {
		return w.Status == models.WithdrawalPending && !w.SettleAfter.After(now)
	})
	// oldest first so settlement follows request order
	for i, j := 0, len(due)-1; i < j; i, j = i+1, j-1 {
		due[i], due[j] = due[j], due[i]
	}
	return due, nil
}

// Sessions and violations

func (s *MemoryStore) CreateSession(_ context.Context, ss *models.StreamSession) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	if _, ok := s.sessionKeys[ss.SessionKey]; ok {
		return ErrDuplicate
	}
	s.stamp(&ss.ID, &ss.CreatedAt)
	s.sessions[ss.ID] = *ss
	s.sessionKeys[ss.SessionKey] = ss.ID
	return nil
}

func (s *MemoryStore) GetSessionByKey(_ context.Context, key string) (*models.StreamSession, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	id, ok := s.sessionKeys[key]
	if !ok {
		return nil, ErrNotFound
	}
	ss := s.sessions[id]
	return &ss, nil
}

func (s *MemoryStore) UpdateSession(_ context.Context, id string, fn func(*models.StreamSession) error) (*models.StreamSession, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	key := ss.SessionKey
	if err := fn(&ss); err != nil {
		return nil, err
	}
	ss.ID = id
	ss.SessionKey = key
	s.sessions[id] = ss
	return &ss, nil
}

func (s *MemoryStore) CreateViolation(_ context.Context, v *models.Violation) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&v.ID, &v.DetectedAt)
	s.violations[v.ID] = *v
	return nil
}

func (s *MemoryStore) CountViolations(_ context.Context, userID string) (int64, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	var n int64
	for _, v := range s.violations {
		if v.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Comments

func (s *MemoryStore) CreateComment(_ context.Context, c *models.Comment) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&c.ID, &c.CreatedAt)
	s.comments[c.ID] = *c
	return nil
}

func (s *MemoryStore) GetComment(_ context.Context, id string) (*models.Comment, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) UpdateComment(_ context.Context, id string, fn func(*models.Comment) error) (*models.Comment, error) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	c.ID = id
	s.comments[id] = c
	return &c, nil
}

// ListComments returns the live comments on a content, newest first.
func (s *MemoryStore) ListComments(_ context.Context, contentID string) ([]models.Comment, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Comment{}
	ids := []string{}
	for id, c := range s.comments {
		if c.ContentID == contentID && !c.IsDeleted {
			out = append(out, c)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(c models.Comment) time.Time { return c.CreatedAt })
	return out, nil
}

func (s *MemoryStore) FindCommentLike(_ context.Context, commentID, userID string) (*models.CommentLike, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	id, ok := s.likeIdx[pairKey(commentID, userID)]
	if !ok {
		return nil, ErrNotFound
	}
	l := s.commentLikes[id]
	return &l, nil
}

func (s *MemoryStore) CreateCommentLike(_ context.Context, l *models.CommentLike) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	key := pairKey(l.CommentID, l.UserID)
	if _, ok := s.likeIdx[key]; ok {
		return ErrDuplicate
	}
	s.stamp(&l.ID, &l.CreatedAt)
	s.commentLikes[l.ID] = *l
	s.likeIdx[key] = l.ID
	return nil
}

func (s *MemoryStore) DeleteCommentLike(_ context.Context, id string) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	l, ok := s.commentLikes[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.commentLikes, id)
	delete(s.likeIdx, pairKey(l.CommentID, l.UserID))
	return nil
}

// Bookmarks and follows

func (s *MemoryStore) FindBookmark(_ context.Context, userID, contentID string) (*models.Bookmark, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	id, ok := s.bookmarkIdx[pairKey(userID, contentID)]
	if !ok {
		return nil, ErrNotFound
	}
	b := s.bookmarks[id]
	return &b, nil
}

func (s *MemoryStore) CreateBookmark(_ context.Context, b *models.Bookmark) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	key := pairKey(b.UserID, b.ContentID)
	if _, ok := s.bookmarkIdx[key]; ok {
		return ErrDuplicate
	}
	s.stamp(&b.ID, &b.CreatedAt)
	s.bookmarks[b.ID] = *b
	s.bookmarkIdx[key] = b.ID
	return nil
}

func (s *MemoryStore) DeleteBookmark(_ context.Context, id string) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	b, ok := s.bookmarks[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.bookmarks, id)
	delete(s.bookmarkIdx, pairKey(b.UserID, b.ContentID))
	return nil
}

func (s *MemoryStore) ListBookmarks(_ context.Context, userID string) ([]models.Bookmark, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := []models.Bookmark{}
	ids := []string{}
	for id, b := range s.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(b models.Bookmark) time.Time { return b.CreatedAt })
	return out, nil
}

func (s *MemoryStore) FindFollow(_ context.Context, followerID, followingID string) (*models.Follow, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	id, ok := s.followIdx[pairKey(followerID, followingID)]
	if !ok {
		return nil, ErrNotFound
	}
	f := s.follows[id]
	return &f, nil
}

func (s *MemoryStore) CreateFollow(_ context.Context, f *models.Follow) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	key := pairKey(f.FollowerID, f.FollowingID)
	if _, ok := s.followIdx[key]; ok {
		return ErrDuplicate
	}
	s.stamp(&f.ID, &f.CreatedAt)
	s.follows[f.ID] = *f
	s.followIdx[key] = f.ID
	return nil
}

func (s *MemoryStore) DeleteFollow(_ context.Context, id string) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	f, ok := s.follows[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.follows, id)
	delete(s.followIdx, pairKey(f.FollowerID, f.FollowingID))
	return nil
}

func (s *MemoryStore) CountFollows(_ context.Context, userID string) (models.FollowStats, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	var stats models.FollowStats
	for _, f := range s.follows {
		if f.FollowingID == userID {
			stats.Followers++
		}
		if f.FollowerID == userID {
			stats.Following++
		}
	}
	return stats, nil
}

// Messages

func (s *MemoryStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.stamp(&m.ID, &m.CreatedAt)
	s.messages[m.ID] = *m
	return nil
}

func (s *MemoryStore) collectMessages(match func(models.Message) bool) []models.Message {
	out := []models.Message{}
	ids := []string{}
	for id, m := range s.messages {
		if match(m) {
			out = append(out, m)
			ids = append(ids, id)
		}
	}
	sortNewest(s, out, ids, func(m models.Message) time.Time { return m.CreatedAt })
	return out
}

func (s *MemoryStore) ListConversation(_ context.Context, a, b string) ([]models.Message, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := s.collectMessages(func(m models.Message) bool {
		return (m.FromUserID == a && m.ToUserID == b) || (m.FromUserID == b && m.ToUserID == a)
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *MemoryStore) ListMessagesFor(_ context.Context, userID string) ([]models.Message, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.collectMessages(func(m models.Message) bool {
		return m.FromUserID == userID || m.ToUserID == userID
	}), nil
}

func (s *MemoryStore) MarkRead(_ context.Context, readerID, fromUserID string) error {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	for id, m := range s.messages {
		if m.ToUserID == readerID && m.FromUserID == fromUserID && !m.IsRead {
			m.IsRead = true
			s.messages[id] = m
		}
	}
	return nil
}

// CountUnread counts unread messages addressed to readerID. An empty
// fromUserID counts across all senders.
func (s *MemoryStore) CountUnread(_ context.Context, readerID, fromUserID string) (int64, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	var n int64
	for _, m := range s.messages {
		if m.ToUserID == readerID && !m.IsRead && (fromUserID == "" || m.FromUserID == fromUserID) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

var _ Repository = (*MemoryStore)(nil)
