package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gramsetu/sandesh/internal/api"
	"github.com/gramsetu/sandesh/internal/bot"
	"github.com/gramsetu/sandesh/internal/cache"
	"github.com/gramsetu/sandesh/internal/classify"
	"github.com/gramsetu/sandesh/internal/config"
	"github.com/gramsetu/sandesh/internal/logger"
	"github.com/gramsetu/sandesh/internal/middleware"
	"github.com/gramsetu/sandesh/internal/pipeline"
	"github.com/gramsetu/sandesh/internal/store"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting sandesh...")

	// Initialize cache (optional Redis, in-memory fallback)
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.CachePrefix)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
			cacheClient = cache.NewMemoryCache()
		} else {
			cacheClient = redisCache
		}
	} else {
		cacheClient = cache.NewMemoryCache()
	}
	defer func() {
		if err := cacheClient.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}()

	// Content store client
	storeClient := store.New(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch)

	// Classifier provider chain: Gemini first, Claude second, deterministic
	// fallback when neither is configured or both fail.
	var providers []classify.Provider
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, classify.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ClassifyTimeout))
	}
	if cfg.ClaudeAPIKey != "" {
		providers = append(providers, classify.NewClaudeProvider(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.ClassifyTimeout))
	}
	classifier := classify.New(providers...)

	// Pipeline and Telegram transport
	pipe := pipeline.New(cfg, storeClient, classifier)
	tgBot, err := bot.New(cfg, pipe, storeClient, cacheClient, classifier.ProviderNames())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	botCtx, stopBot := context.WithCancel(context.Background())
	go func() {
		if err := tgBot.Run(botCtx); err != nil && botCtx.Err() == nil {
			log.Error().Err(err).Msg("Bot stopped unexpectedly")
		}
	}()

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	// Setup API routes
	api.SetupRoutes(app, cfg)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	stopBot()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
