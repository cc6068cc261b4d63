package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/config"
	"github.com/Macwinner1/Xecret/db"
	"github.com/Macwinner1/Xecret/routes"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/storage"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

// @title Xecret API
// @version 1.0
// @description Creator content platform: pay-per-view content, wallets, protected streaming and social features
// @host localhost:8080
// @BasePath /api
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT with the Bearer prefix: Bearer <JWT>
func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	logFile, err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error configuring logger")
	}
	if logFile != nil {
		defer logFile.Close()
	}

	gin.SetMode(gin.ReleaseMode)

	var repo store.Repository
	if cfg.DBURL != "" {
		conn, err := db.Open(cfg.DBURL)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Error opening database")
		}
		repo = store.NewGormStore(conn)
	} else {
		utils.LogInfo("DB_URL not set, using the in-memory store")
		repo = store.NewMemoryStore()
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		utils.Logger.Warn("JWT_SECRET not set, signing tokens with the development secret")
	}

	var blobs storage.BlobStore
	if cfg.Cloudinary.Enabled() {
		cld, err := storage.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Error initializing Cloudinary")
		}
		blobs = cld
	} else {
		utils.LogInfo("Cloudinary credentials not set, keeping uploads in memory")
		blobs = storage.NewMemoryBlobStore()
	}

	deps := routes.NewDeps(cfg, repo, blobs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := ledger.NewSettlementWorker(deps.Ledger, cfg.SettlementSchedule)
	if err := worker.Start(); err != nil {
		utils.Logger.WithError(err).Fatal("Error starting settlement worker")
	}
	deps.RateLimiter.StartCleanup(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogSuccess("Server listening on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Error during server shutdown")
	}
	<-worker.Stop().Done()
}
