package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"steam-bff-backend/config"
	"steam-bff-backend/internal/api"
	"steam-bff-backend/internal/cache"
	"steam-bff-backend/internal/db"
	"steam-bff-backend/internal/identity"
	"steam-bff-backend/internal/mw"
	"steam-bff-backend/internal/steam"
	"steam-bff-backend/internal/store"
	"steam-bff-backend/internal/upstream"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("configuration loaded", zap.String("path", configPath))

	tokens, err := identity.NewTokenIssuer(cfg.Identity.ServiceAccount, cfg.Identity.TokenTTL)
	if err != nil {
		logger.Fatal("failed to load identity service account", zap.Error(err))
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	users := store.NewGormStore(gormDB)

	steamSvc := steam.NewService(cfg.Steam, logger.Named("steam"))
	logger.Info("steam service ready", zap.String("profile_strategy", steamSvc.ProfileStrategy()))

	verifier := identity.NewSteamVerifier(
		upstream.New(upstream.Options{Timeout: cfg.Steam.GeneralTimeout, Proxy: cfg.Steam.HTTPProxy, Logger: logger}),
		cfg.Steam.OpenIDURL,
	)

	handler := api.NewHandler(cfg.Server, steamSvc, verifier, users, tokens, logger.Named("api"))
	skinCache := cache.New[mw.CachedResponse]("skin", cfg.Steam.SkinCacheTTL)
	router := api.NewRouter(handler, skinCache, logger.Named("http"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("server gracefully stopped")
}
