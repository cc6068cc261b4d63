// Package ledger applies the monetary effects of purchases, tips, deposits
// and withdrawals to wallets and earnings counters.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Macwinner1/Xecret/metrics"
	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

var (
	ErrContentNotFound         = errors.New("content not found")
	ErrNotPayPerView           = errors.New("content is not pay-per-view")
	ErrAlreadyPurchased        = errors.New("already purchased")
	ErrOwnContent              = errors.New("cannot purchase your own content")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrRecipientNotFound       = errors.New("recipient not found")
	ErrSelfTip                 = errors.New("cannot tip yourself")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidWithdrawalMethod = errors.New("invalid withdrawal method")
	ErrCryptoAddressRequired   = errors.New("crypto address required")
	ErrBankDetailsRequired     = errors.New("bank details required")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrWithdrawalNotFound      = errors.New("withdrawal not found")
	ErrNotAuthorized           = errors.New("not authorized")
	ErrNotPending              = errors.New("can only cancel pending withdrawals")
	ErrAlreadyResolved         = errors.New("withdrawal is no longer pending")
)

type Options struct {
	// FeeRate is the share of every purchase and tip kept by the platform.
	FeeRate decimal.Decimal
	// SettlementDelay is how long a withdrawal stays pending before the
	// settlement worker may complete it.
	SettlementDelay time.Duration
	Now             func() time.Time
}

type Service struct {
	repo store.Repository
	opts Options
}

func New(repo store.Repository, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{repo: repo, opts: opts}
}

func (s *Service) FeeRate() decimal.Decimal {
	return s.opts.FeeRate
}

func record(op string, err error) {
	metrics.RecordLedgerOperation(op, err == nil)
}

// RecordPurchase buys a pay-per-view content for buyerID. The purchase row,
// the content counters, the creator's earnings and wallet change together.
func (s *Service) RecordPurchase(ctx context.Context, buyerID, contentID, paymentMethod string) (p *models.Purchase, err error) {
	defer func() { record("purchase", err) }()

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		content, err := tx.GetContent(ctx, contentID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrContentNotFound
		}
		if err != nil {
			return fmt.Errorf("get content: %w", err)
		}
		if content.IsDeleted {
			return ErrContentNotFound
		}
		if content.AccessType != models.AccessPPV {
			return ErrNotPayPerView
		}
		if content.CreatorID == buyerID {
			return ErrOwnContent
		}

		_, err = tx.FindPurchase(ctx, buyerID, contentID)
		if err == nil {
			return ErrAlreadyPurchased
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("find purchase: %w", err)
		}
		if _, err := tx.GetUser(ctx, content.CreatorID); err != nil {
			return fmt.Errorf("get creator: %w", err)
		}

		fee, net := models.SplitFee(content.Price, s.opts.FeeRate)
		purchase := &models.Purchase{
			ContentID:       content.ID,
			BuyerID:         buyerID,
			CreatorID:       content.CreatorID,
			Amount:          content.Price,
			PlatformFee:     fee,
			CreatorAmount:   net,
			PaymentMethod:   paymentMethod,
			TransactionHash: utils.MockTransactionHash(),
			PurchasedAt:     s.opts.Now(),
		}
		// deletion is re-checked under the row lock
		if _, err := tx.UpdateContent(ctx, content.ID, func(c *models.Content) error {
			if c.IsDeleted {
				return ErrContentNotFound
			}
			c.PaidViewerCount++
			c.DeletionLocked = true
			return nil
		}); err != nil {
			if errors.Is(err, ErrContentNotFound) {
				return err
			}
			return fmt.Errorf("lock content: %w", err)
		}
		if err := tx.CreatePurchase(ctx, purchase); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyPurchased
			}
			return fmt.Errorf("create purchase: %w", err)
		}
		if _, err := tx.UpdateUser(ctx, content.CreatorID, func(u *models.User) error {
			u.TotalEarnings = u.TotalEarnings.Add(net)
			return nil
		}); err != nil {
			return fmt.Errorf("credit earnings: %w", err)
		}
		if _, err := tx.UpdateWallet(ctx, content.CreatorID, func(w *models.Wallet) error {
			w.Balance = w.Balance.Add(net)
			return nil
		}); err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}

		p = purchase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RecordTip sends amount from senderID to the user named in req.
func (s *Service) RecordTip(ctx context.Context, senderID string, req models.TipRequest) (t *models.Tip, err error) {
	defer func() { record("tip", err) }()

	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		recipient, err := tx.GetUserByUsername(ctx, req.RecipientUsername)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRecipientNotFound
		}
		if err != nil {
			return fmt.Errorf("get recipient: %w", err)
		}
		if recipient.ID == senderID {
			return ErrSelfTip
		}

		var contentID *string
		if req.ContentID != "" {
			content, err := tx.GetContent(ctx, req.ContentID)
			if errors.Is(err, store.ErrNotFound) || (err == nil && content.IsDeleted) {
				return ErrContentNotFound
			}
			if err != nil {
				return fmt.Errorf("get content: %w", err)
			}
			contentID = &content.ID
		}

		fee, net := models.SplitFee(req.Amount, s.opts.FeeRate)
		tip := &models.Tip{
			FromUserID:      senderID,
			ToUserID:        recipient.ID,
			ContentID:       contentID,
			Amount:          req.Amount,
			PlatformFee:     fee,
			RecipientAmount: net,
			Message:         req.Message,
			TransactionHash: utils.MockTransactionHash(),
			CreatedAt:       s.opts.Now(),
		}
		if err := tx.CreateTip(ctx, tip); err != nil {
			return fmt.Errorf("create tip: %w", err)
		}

		if _, err := tx.UpdateUser(ctx, recipient.ID, func(u *models.User) error {
			u.TotalTipsReceived = u.TotalTipsReceived.Add(net)
			u.TotalEarnings = u.TotalEarnings.Add(net)
			return nil
		}); err != nil {
			return fmt.Errorf("credit earnings: %w", err)
		}
		if _, err := tx.UpdateWallet(ctx, recipient.ID, func(w *models.Wallet) error {
			w.Balance = w.Balance.Add(net)
			return nil
		}); err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}
		if contentID != nil {
			if _, err := tx.UpdateContent(ctx, *contentID, func(c *models.Content) error {
				c.TipCount++
				return nil
			}); err != nil {
				return fmt.Errorf("count tip: %w", err)
			}
		}

		t = tip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Deposit credits userID's balance without a platform fee.
func (s *Service) Deposit(ctx context.Context, userID string, amount decimal.Decimal, method models.PaymentMethod) (d *models.Deposit, w *models.Wallet, err error) {
	defer func() { record("deposit", err) }()

	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if method != models.PaymentCreditCard && method != models.PaymentCrypto {
		return nil, nil, ErrInvalidPaymentMethod
	}

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		wallet, err := tx.UpdateWallet(ctx, userID, func(w *models.Wallet) error {
			w.Balance = w.Balance.Add(amount)
			return nil
		})
		if err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}

		deposit := &models.Deposit{
			UserID:        userID,
			Amount:        amount,
			PaymentMethod: method,
			Status:        "completed",
			CreatedAt:     s.opts.Now(),
		}
		if method == models.PaymentCrypto {
			hash := utils.MockTransactionHash()
			deposit.TransactionHash = &hash
		}
		if err := tx.CreateDeposit(ctx, deposit); err != nil {
			return fmt.Errorf("create deposit: %w", err)
		}

		d, w = deposit, wallet
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return d, w, nil
}

// RequestWithdrawal moves amount from the balance to the pending balance and
// opens a pending withdrawal due for settlement after the configured delay.
func (s *Service) RequestWithdrawal(ctx context.Context, userID string, req models.WithdrawalRequest) (wd *models.Withdrawal, w *models.Wallet, err error) {
	defer func() { record("withdraw", err) }()

	if !req.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	withdrawal := &models.Withdrawal{
		UserID: userID,
		Amount: req.Amount,
		Method: req.WithdrawalMethod,
		Status: models.WithdrawalPending,
	}
	switch req.WithdrawalMethod {
	case models.WithdrawCrypto:
		if req.CryptoAddress == "" {
			return nil, nil, ErrCryptoAddressRequired
		}
		addr := req.CryptoAddress
		withdrawal.CryptoAddress = &addr
	case models.WithdrawBank:
		if req.BankDetails == "" {
			return nil, nil, ErrBankDetailsRequired
		}
		details := req.BankDetails
		withdrawal.BankDetails = &details
	default:
		return nil, nil, ErrInvalidWithdrawalMethod
	}

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := tx.GetWallet(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("get wallet: %w", err)
		}
		wallet, err := tx.UpdateWallet(ctx, userID, func(w *models.Wallet) error {
			if w.Balance.LessThan(req.Amount) {
				return ErrInsufficientBalance
			}
			w.Balance = w.Balance.Sub(req.Amount)
			w.PendingBalance = w.PendingBalance.Add(req.Amount)
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				return err
			}
			return fmt.Errorf("reserve funds: %w", err)
		}

		now := s.opts.Now()
		withdrawal.CreatedAt = now
		withdrawal.SettleAfter = now.Add(s.opts.SettlementDelay)
		if err := tx.CreateWithdrawal(ctx, withdrawal); err != nil {
			return fmt.Errorf("create withdrawal: %w", err)
		}

		wd, w = withdrawal, wallet
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return wd, w, nil
}

// CancelWithdrawal returns a pending withdrawal's amount to the balance.
func (s *Service) CancelWithdrawal(ctx context.Context, userID, withdrawalID string) (wd *models.Withdrawal, w *models.Wallet, err error) {
	defer func() { record("cancel_withdrawal", err) }()

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		// the status is checked under the row lock taken by UpdateWithdrawal
		now := s.opts.Now()
		updated, err := tx.UpdateWithdrawal(ctx, withdrawalID, func(w *models.Withdrawal) error {
			if w.UserID != userID {
				return ErrNotAuthorized
			}
			if w.Status != models.WithdrawalPending {
				return ErrNotPending
			}
			w.Status = models.WithdrawalCancelled
			w.ProcessedAt = &now
			return nil
		})
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrWithdrawalNotFound
		case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrNotPending):
			return err
		case err != nil:
			return fmt.Errorf("cancel withdrawal: %w", err)
		}

		wallet, err := tx.UpdateWallet(ctx, userID, func(w *models.Wallet) error {
			w.Balance = w.Balance.Add(updated.Amount)
			w.PendingBalance = w.PendingBalance.Sub(updated.Amount)
			return nil
		})
		if err != nil {
			return fmt.Errorf("release funds: %w", err)
		}

		wd, w = updated, wallet
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return wd, w, nil
}

// SettleWithdrawal completes a pending withdrawal. It is the external
// settlement event: the status is checked while the withdrawal row is
// locked, so a withdrawal cancelled in the meantime is left untouched and
// ErrAlreadyResolved is returned.
func (s *Service) SettleWithdrawal(ctx context.Context, withdrawalID string) (wd *models.Withdrawal, err error) {
	defer func() { metrics.RecordSettlement(err == nil) }()

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		now := s.opts.Now()
		updated, err := tx.UpdateWithdrawal(ctx, withdrawalID, func(w *models.Withdrawal) error {
			if w.Status != models.WithdrawalPending {
				return ErrAlreadyResolved
			}
			w.Status = models.WithdrawalCompleted
			w.ProcessedAt = &now
			return nil
		})
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrWithdrawalNotFound
		case errors.Is(err, ErrAlreadyResolved):
			return err
		case err != nil:
			return fmt.Errorf("complete withdrawal: %w", err)
		}

		if _, err := tx.UpdateWallet(ctx, updated.UserID, func(w *models.Wallet) error {
			w.PendingBalance = w.PendingBalance.Sub(updated.Amount)
			return nil
		}); err != nil {
			return fmt.Errorf("clear pending: %w", err)
		}

		wd = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wd, nil
}

// SettleDue completes every pending withdrawal whose settle time has passed
// and returns how many were completed.
func (s *Service) SettleDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDueWithdrawals(ctx, s.opts.Now())
	if err != nil {
		return 0, fmt.Errorf("list due withdrawals: %w", err)
	}

	settled := 0
	for _, w := range due {
		if err := ctx.Err(); err != nil {
			return settled, err
		}
		_, err := s.SettleWithdrawal(ctx, w.ID)
		switch {
		case err == nil:
			settled++
		case errors.Is(err, ErrAlreadyResolved):
			// cancelled between listing and settling
		default:
			utils.LogErrorWithUser(w.UserID, err, "Error settling withdrawal "+w.ID)
		}
	}
	return settled, nil
}

// Balance returns the user's wallet, or an empty one when none exists yet.
func (s *Service) Balance(ctx context.Context, userID string) (*models.Wallet, error) {
	w, err := s.repo.GetWallet(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.Wallet{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// History rebuilds the user's transaction history, newest first. Nothing is
// stored; each call reads the underlying records.
func (s *Service) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs := []models.Transaction{}

	deposits, err := s.repo.ListDeposits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	for _, d := range deposits {
		via := "Crypto"
		if d.PaymentMethod == models.PaymentCreditCard {
			via = "Credit Card"
		}
		txs = append(txs, models.Transaction{
			Type:        models.TxDeposit,
			Amount:      d.Amount,
			Description: "Deposit via " + via,
			CreatedAt:   d.CreatedAt,
		})
	}

	bought, err := s.repo.ListPurchasesByBuyer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	for _, p := range bought {
		txs = append(txs, models.Transaction{
			Type:        models.TxPurchase,
			Amount:      p.Amount.Neg(),
			Description: "Content purchase",
			CreatedAt:   p.PurchasedAt,
		})
	}

	sent, err := s.repo.ListTipsSent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tips sent: %w", err)
	}
	for _, t := range sent {
		txs = append(txs, models.Transaction{
			Type:        models.TxTipSent,
			Amount:      t.Amount.Neg(),
			Description: "Tip sent",
			CreatedAt:   t.CreatedAt,
		})
	}

	received, err := s.repo.ListTipsReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tips received: %w", err)
	}
	for _, t := range received {
		txs = append(txs, models.Transaction{
			Type:        models.TxTipReceived,
			Amount:      t.RecipientAmount,
			Description: "Tip received",
			CreatedAt:   t.CreatedAt,
		})
	}

	sold, err := s.repo.ListPurchasesByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	for _, p := range sold {
		txs = append(txs, models.Transaction{
			Type:        models.TxSale,
			Amount:      p.CreatorAmount,
			Description: "Content sale",
			CreatedAt:   p.PurchasedAt,
		})
	}

	withdrawals, err := s.repo.ListWithdrawals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	for _, w := range withdrawals {
		txs = append(txs, models.Transaction{
			Type:        models.TxWithdrawal,
			Amount:      w.Amount.Neg(),
			Description: fmt.Sprintf("Withdrawal (%s)", w.Status),
			CreatedAt:   w.CreatedAt,
		})
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs, nil
}

func (s *Service) Earnings(ctx context.Context, userID string) (*models.Earnings, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	sold, err := s.repo.ListPurchasesByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	received, err := s.repo.ListTipsReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}

	out := &models.Earnings{
		TotalEarnings:     user.TotalEarnings,
		TotalTipsReceived: user.TotalTipsReceived,
		ContentSales:      make([]models.SaleEarning, 0, len(sold)),
		Tips:              make([]models.TipEarning, 0, len(received)),
	}
	for _, p := range sold {
		out.ContentSales = append(out.ContentSales, models.SaleEarning{
			ContentID:   p.ContentID,
			Amount:      p.CreatorAmount,
			PurchasedAt: p.PurchasedAt,
		})
	}
	for _, t := range received {
		out.Tips = append(out.Tips, models.TipEarning{
			TipID:     t.ID,
			Amount:    t.RecipientAmount,
			FromUser:  t.FromUserID,
			Message:   t.Message,
			CreatedAt: t.CreatedAt,
		})
	}
	return out, nil
}

// Purchases lists what buyerID bought, skipping content deleted since.
func (s *Service) Purchases(ctx context.Context, buyerID string) ([]models.PurchaseView, error) {
	bought, err := s.repo.ListPurchasesByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	views := make([]models.PurchaseView, 0, len(bought))
	for _, p := range bought {
		content, err := s.repo.GetContent(ctx, p.ContentID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get content: %w", err)
		}
		if content.IsDeleted {
			continue
		}
		views = append(views, models.PurchaseView{Purchase: p, Content: *content})
	}
	return views, nil
}

func (s *Service) Withdrawals(ctx context.Context, userID string) ([]models.Withdrawal, error) {
	out, err := s.repo.ListWithdrawals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return out, nil
}
