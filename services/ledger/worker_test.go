package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Macwinner1/Xecret/models"
)

func TestSettlementWorkerRunOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.ledger.Deposit(ctx, f.buyer.ID, dec("10"), models.PaymentCrypto)
	require.NoError(t, err)
	wd, _, err := f.ledger.RequestWithdrawal(ctx, f.buyer.ID, models.WithdrawalRequest{Amount: dec("10"), WithdrawalMethod: models.WithdrawCrypto, CryptoAddress: "0xdest"})
	require.NoError(t, err)

	f.now = f.now.Add(10 * time.Second)
	NewSettlementWorker(f.ledger, "@every 1s").RunOnce()

	stored, err := f.repo.GetWithdrawal(ctx, wd.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, stored.Status)
}

func TestSettlementWorkerRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	w := NewSettlementWorker(f.ledger, "not a schedule")
	assert.Error(t, w.Start())
}
