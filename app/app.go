package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devsphere-api/config"
	"devsphere-api/db"
	"devsphere-api/handler"
	"devsphere-api/logger"
	"devsphere-api/repository"
	"devsphere-api/router"
	"devsphere-api/service"

	"github.com/robfig/cron/v3"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	postRepo := repository.NewPostRepository(database)
	infoRepo := repository.NewUserInfoRepository(database)

	authService := service.NewAuthService(database, userRepo, tokenRepo, infoRepo)
	postService := service.NewPostService(postRepo, redisClient)
	userService := service.NewUserService(userRepo)
	infoService := service.NewUserInfoService(infoRepo)

	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)
	userHandler := handler.NewUserHandler(userService)
	infoHandler := handler.NewUserInfoHandler(infoService)

	r := router.NewRouter(authHandler, postHandler, userHandler, infoHandler)

	// Expired refresh tokens pile up otherwise; sweep them hourly.
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if _, err := authService.PurgeExpiredTokens(); err != nil {
			logger.Log.WithError(err).Error("Failed to purge expired refresh tokens")
		}
	}); err != nil {
		logger.Log.Fatalf("Failed to schedule token purge: %v", err)
	}
	c.Start()
	defer c.Stop()

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
