package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/middleware"
)

func AuthRoutes(api *gin.RouterGroup, d Deps) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/zk-login", d.Auth.ZkLogin)
		authRoutes.POST("/login", d.Auth.Login)
		authRoutes.GET("/profile/:username", d.Auth.Profile)
		authRoutes.GET("/me", middleware.JWTAuth(d.Tokens), d.Auth.Me)
	}
}

func ContentRoutes(api *gin.RouterGroup, d Deps) {
	// public
	api.GET("/content", d.Content.List)
	api.GET("/content/:id", d.Content.Get)
	api.GET("/content/creator/:username", d.Content.ListByCreator)
	api.GET("/content/:id/access", middleware.OptionalAuth(d.Tokens), d.Content.Access)

	contentRoutes := api.Group("/content")
	contentRoutes.Use(middleware.JWTAuth(d.Tokens))
	{
		contentRoutes.POST("/upload", d.Content.Upload)
		contentRoutes.DELETE("/:id", d.Content.Delete)
		contentRoutes.POST("/:id/hide", d.Content.Hide)
	}
}

func PaymentRoutes(api *gin.RouterGroup, d Deps) {
	paymentRoutes := api.Group("/payment")
	paymentRoutes.Use(middleware.JWTAuth(d.Tokens))
	{
		paymentRoutes.POST("/purchase", d.Payment.Purchase)
		paymentRoutes.POST("/tip", d.Payment.Tip)
		paymentRoutes.GET("/purchases", d.Payment.Purchases)
		paymentRoutes.GET("/earnings", d.Payment.Earnings)
	}
}

func WalletRoutes(api *gin.RouterGroup, d Deps) {
	// called by the settlement backend, authenticated by shared secret
	api.POST("/wallet/settlements/:id", d.Wallet.Settle)

	walletRoutes := api.Group("/wallet")
	walletRoutes.Use(middleware.JWTAuth(d.Tokens))
	{
		walletRoutes.GET("/balance", d.Wallet.Balance)
		walletRoutes.POST("/deposit", d.Wallet.Deposit)
		walletRoutes.POST("/withdraw", d.Wallet.Withdraw)
		walletRoutes.GET("/withdrawals", d.Wallet.Withdrawals)
		walletRoutes.POST("/cancel-withdrawal", d.Wallet.CancelWithdrawal)
		walletRoutes.GET("/transactions", d.Wallet.Transactions)
	}
}

func StreamRoutes(api *gin.RouterGroup, d Deps) {
	// the session key authorizes file reads
	api.GET("/stream/:id/file", d.Stream.File)

	streamRoutes := api.Group("/stream")
	streamRoutes.Use(middleware.JWTAuth(d.Tokens))
	{
		streamRoutes.POST("/session", d.Stream.CreateSession)
		streamRoutes.POST("/session/renew", d.Stream.RenewSession)
		streamRoutes.POST("/violation", d.Stream.ReportViolation)
	}
}

func SocialRoutes(api *gin.RouterGroup, d Deps) {
	optional := middleware.OptionalAuth(d.Tokens)
	api.GET("/social/comments/:contentId", optional, d.Social.ListComments)
	api.GET("/social/comments/:contentId/stream", optional, d.Social.StreamComments)
	api.GET("/social/follow/stats/:username", d.Social.FollowStats)

	socialRoutes := api.Group("/social")
	socialRoutes.Use(middleware.JWTAuth(d.Tokens))
	{
		socialRoutes.POST("/comments", d.Social.CreateComment)
		socialRoutes.POST("/comments/:commentId/like", d.Social.ToggleCommentLike)
		socialRoutes.DELETE("/comments/:commentId", d.Social.DeleteComment)
		socialRoutes.POST("/bookmarks", d.Social.ToggleBookmark)
		socialRoutes.GET("/bookmarks", d.Social.ListBookmarks)
		socialRoutes.POST("/follow/:username", d.Social.ToggleFollow)
	}
}

func MessagesRoutes(api *gin.RouterGroup, d Deps) {
	messagesRoutes := api.Group("/messages")
	messagesRoutes.Use(middleware.JWTAuth(d.Tokens))
	{
		messagesRoutes.POST("/send", d.Messages.Send)
		messagesRoutes.GET("/conversation/:username", d.Messages.Conversation)
		messagesRoutes.GET("/conversations", d.Messages.Conversations)
		messagesRoutes.GET("/unread-count", d.Messages.UnreadCount)
	}
}
