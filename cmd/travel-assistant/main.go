// cmd/travel-assistant/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travel-assistant/internal/ai/provider"
	"travel-assistant/internal/ai/responder"
	"travel-assistant/internal/ai/router"
	"travel-assistant/internal/ai/synthesis"
	"travel-assistant/internal/api"
	"travel-assistant/internal/common/config"
	"travel-assistant/internal/common/database"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/conversation"
	"travel-assistant/internal/weather"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting travel assistant...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AI providers in configured fallback order ---
	providerTimeout := time.Duration(cfg.Providers.Timeout) * time.Millisecond
	httpClient := &http.Client{Timeout: providerTimeout}

	var providers []provider.Provider
	for _, name := range cfg.Providers.Order {
		switch name {
		case "openai":
			if cfg.Providers.OpenAI.APIKey == "" {
				zapLog.Warn("openai configured but no API key, skipping")
				continue
			}
			providers = append(providers, provider.NewOpenAI(cfg.Providers.OpenAI, httpClient))
		case "gemini":
			if cfg.Providers.Gemini.APIKey == "" {
				zapLog.Warn("gemini configured but no API key, skipping")
				continue
			}
			gemini, err := provider.NewGemini(ctx, cfg.Providers.Gemini)
			if err != nil {
				zapLog.Fatal("gemini client failed", zap.Error(err))
			}
			defer gemini.Close()
			providers = append(providers, gemini)
		}
	}
	if len(providers) == 0 {
		zapLog.Fatal("no AI providers available")
	}
	zapLog.Info("AI providers initialized", zap.Int("count", len(providers)))

	// --- Wire the conversation stack ---
	aiRouter := router.New(providers, providerTimeout, log)
	synth := synthesis.New(aiRouter, log)
	chat := responder.New(aiRouter, log)
	weatherClient := weather.NewClient(cfg.Weather, redisClient, log)
	store := conversation.NewPostgresStore(pg)
	manager := conversation.NewManager(store, synth, chat, weatherClient, log)

	handler := api.NewHandler(manager, store, log)
	engine := api.NewRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * providerTimeout,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// pprof on a side port for profiling in non-production setups
	if cfg.App.Environment != "production" {
		go func() {
			zapLog.Info("pprof listening on :6060")
			_ = http.ListenAndServe(":6060", nil)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
