package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"picstream/internal/api"
	"picstream/internal/auth"
	"picstream/internal/config"
	"picstream/internal/database"
	"picstream/internal/logger"
	"picstream/internal/monitoring"
	"picstream/internal/services"
	"picstream/internal/storage"
	"picstream/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration; a missing JWT secret refuses to start here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Blob storage for uploaded images
	uploads, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload directory")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub for the live pic stream
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	tokenService := auth.NewTokenService(cfg.JWTSecret)
	userService := services.NewUserService(db)
	followService := services.NewFollowService(db)
	picService := services.NewPicService(db, hub)
	feedService := services.NewFeedService(db)
	trendingService := services.NewTrendingService(db)

	// Set up and run the background trending updater
	updater, err := monitoring.NewTrendingUpdater(trendingService, cfg.TrendingSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid trending schedule")
	}
	go updater.Run()

	// Set up router
	router := api.NewRouter(tokenService, userService, followService, picService, feedService, trendingService, uploads, hub)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	updater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
