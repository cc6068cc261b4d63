package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Macwinner1/Xecret/utils"
)

// SettlementWorker periodically completes due withdrawals. Each run goes
// through SettleWithdrawal, which re-checks status under the transaction.
type SettlementWorker struct {
	ledger   *Service
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

func NewSettlementWorker(ledger *Service, schedule string) *SettlementWorker {
	logger := cronLogger{}
	return &SettlementWorker{
		ledger:   ledger,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (w *SettlementWorker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.RunOnce); err != nil {
		return fmt.Errorf("schedule settlement %q: %w", w.schedule, err)
	}
	w.cron.Start()
	utils.LogInfo("Settlement worker started with schedule " + w.schedule)
	return nil
}

// Stop halts scheduling and returns a context done once the running job, if
// any, has finished.
func (w *SettlementWorker) Stop() context.Context {
	return w.cron.Stop()
}

// RunOnce settles everything currently due.
func (w *SettlementWorker) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	n, err := w.ledger.SettleDue(ctx)
	if err != nil {
		utils.LogError(err, "Error running withdrawal settlement")
		return
	}
	if n > 0 {
		utils.LogSuccess(fmt.Sprintf("Settled %d withdrawal(s)", n))
	}
}

// cronLogger routes cron's own logging into logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	utils.Logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	utils.Logger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{"source": "cron"}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
