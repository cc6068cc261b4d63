package routes

import (
	"github.com/Macwinner1/Xecret/config"
	"github.com/Macwinner1/Xecret/handlers/auth"
	"github.com/Macwinner1/Xecret/handlers/content"
	"github.com/Macwinner1/Xecret/handlers/messages"
	"github.com/Macwinner1/Xecret/handlers/payment"
	"github.com/Macwinner1/Xecret/handlers/ping"
	socialhandler "github.com/Macwinner1/Xecret/handlers/social"
	streamhandler "github.com/Macwinner1/Xecret/handlers/streaming"
	"github.com/Macwinner1/Xecret/handlers/wallet"
	"github.com/Macwinner1/Xecret/middleware"
	"github.com/Macwinner1/Xecret/services/access"
	"github.com/Macwinner1/Xecret/services/accounts"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/services/lifecycle"
	"github.com/Macwinner1/Xecret/services/messaging"
	"github.com/Macwinner1/Xecret/services/social"
	"github.com/Macwinner1/Xecret/services/streaming"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

// Deps holds everything the router mounts.
type Deps struct {
	Tokens      middleware.TokenDecoder
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string

	// Ledger is exposed so the caller can run the settlement worker.
	Ledger *ledger.Service

	Ping     *ping.Handler
	Auth     *auth.Handler
	Content  *content.Handler
	Payment  *payment.Handler
	Wallet   *wallet.Handler
	Stream   *streamhandler.Handler
	Social   *socialhandler.Handler
	Messages *messages.Handler
}

// NewDeps builds the services and handlers on top of repo and blobs.
func NewDeps(cfg config.Config, repo store.Repository, blobs storage.BlobStore) Deps {
	jwt := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	checker := access.NewChecker(repo)
	ledgerSvc := ledger.New(repo, ledger.Options{
		FeeRate:         cfg.PlatformFeeRate,
		SettlementDelay: cfg.SettlementDelay,
	})

	var pinger ping.Pinger
	if p, ok := repo.(ping.Pinger); ok {
		pinger = p
	}

	return Deps{
		Tokens:      jwt,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitPerMinute),
		CORSOrigins: cfg.CORSOrigins,
		Ledger:      ledgerSvc,

		Ping:     ping.New(pinger),
		Auth:     auth.New(accounts.New(repo, jwt)),
		Content:  content.New(lifecycle.New(repo, blobs, cfg.MaxUploadBytes), checker),
		Payment:  payment.New(ledgerSvc),
		Wallet:   wallet.New(ledgerSvc, cfg.SettlementSecret),
		Stream:   streamhandler.New(streaming.New(repo, checker, blobs, streaming.Options{TTL: cfg.SessionTTL})),
		Social:   socialhandler.New(social.New(repo, social.NewBroadcaster(0))),
		Messages: messages.New(messaging.New(repo)),
	}
}
