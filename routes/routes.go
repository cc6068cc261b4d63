package routes

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/metrics"
	"github.com/Macwinner1/Xecret/middleware"
	"github.com/Macwinner1/Xecret/utils"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Session-Key", "X-Settlement-Secret"},
		ExposeHeaders: []string{"Content-Length", "X-Watermark"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.LoggerWithWriter(utils.LogWriter()),
		gin.Recovery(),
		cors.New(corsConfig(d.CORSOrigins)),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
	)

	r.GET("/ping", d.Ping.HandlePing)
	r.GET("/health", d.Ping.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(d.RateLimiter.Handler())

	AuthRoutes(api, d)
	ContentRoutes(api, d)
	PaymentRoutes(api, d)
	WalletRoutes(api, d)
	StreamRoutes(api, d)
	SocialRoutes(api, d)
	MessagesRoutes(api, d)

	return r
}
