/*
Package main is the entry point for the moonhub server.

It loads configuration and settings, initializes the global logger, builds the
account store, avatar storage, live hub and HTTP router, and shuts everything
down gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moonhub/internal/app/auth"
	"moonhub/internal/app/avatar"
	"moonhub/internal/app/db"
	"moonhub/internal/app/live"
	"moonhub/internal/app/storage"
	"moonhub/internal/app/user"
	"moonhub/internal/configs"
	"moonhub/internal/handler"
	"moonhub/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("avatar_backend", cfg.AvatarBackend).
		Bool("database", cfg.DatabaseDSN != "").
		Msg("Configuration loaded successfully")

	settings, err := configs.LoadSettings(cfg.SettingsFile)
	if err != nil {
		logx.Fatal(err, "Failed to load settings", "path", cfg.SettingsFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var accounts user.AccountStore = user.NewMemoryAccounts()
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		defer pool.Close()
		accounts = db.NewAccounts(pool)
	} else {
		logx.Warn("DATABASE_URL not set; ranks and bans are kept in memory only.")
	}

	store, err := storage.NewBlobStore(ctx, storage.ServiceConfig{
		Backend:           cfg.AvatarBackend,
		Dir:               cfg.AvatarsDir,
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize avatar storage")
	}

	users := user.NewDirectory()
	authService := auth.NewService(ctx, auth.NewSessionServer(cfg.SessionServerURL), accounts, users, cfg.JWTSecret)

	hub := live.NewHub(authService, live.HubConfig{
		MaxPingSize: settings.Rate.PingSize,
		PingRate:    settings.Rate.PingRate,
	})

	deps := &handler.AppDeps{
		Config:   cfg,
		Settings: settings,
		Users:    users,
		Accounts: accounts,
		Auth:     authService,
		Avatars:  avatar.NewService(authService, store, hub, settings, settings.Limits.MaxAvatarSize),
		Hub:      hub,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(ctx, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("moonhub starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// Hijacked WebSocket connections are not covered by server.Shutdown.
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Hub forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
