package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"petcare/backend/internal/cache"
	"petcare/backend/internal/config"
	"petcare/backend/internal/events"
	"petcare/backend/internal/httpapi"
	"petcare/backend/internal/logging"
	"petcare/backend/internal/service"
	"petcare/backend/internal/store"
	"petcare/backend/internal/store/memory"
	"petcare/backend/internal/store/sqlstore"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 3)

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("repository unavailable")
	}
	closers = append(closers, repo.Close)

	history, closeHistory := openHistoryCache(ctx, cfg)
	if closeHistory != nil {
		closers = append(closers, closeHistory)
	}

	publisher, closePublisher := openPublisher(cfg)
	if closePublisher != nil {
		closers = append(closers, closePublisher)
	}

	svc := service.New(repo, service.Options{
		HistoryCache:       history,
		HistoryCacheTTL:    cfg.HistoryCacheTTL(),
		Events:             publisher,
		DefaultPaymentType: cfg.DefaultPaymentType,
		DefaultReceiptType: cfg.DefaultReceiptType,
	})
	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL(), cfg.OperatorUsername, cfg.OperatorPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("auth setup failed")
	}
	api := httpapi.New(svc, auth, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		StoreTimeout:  cfg.StoreTimeout(),
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.StoreTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("petcare backend listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

// openRepository picks the store named by DB_DRIVER. A configured database
// that cannot be reached is fatal; there is no in-memory fallback.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, error) {
	switch cfg.DBDriver {
	case "", "memory":
		log.Info().Str("repository", "memory").Bool("seeded", cfg.SeedOnStart).Msg("repository ready")
		if cfg.SeedOnStart {
			return memory.NewSeeded(), nil
		}
		return memory.New(), nil
	case sqlstore.DriverPostgres, sqlstore.DriverMySQL, sqlstore.DriverSQLite:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=%s", cfg.DBDriver)
		}
		db, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.SeedOnStart {
			seeded, err := db.Seed(ctx)
			if err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("seed %s: %w", cfg.DBDriver, err)
			}
			if seeded {
				log.Info().Str("repository", cfg.DBDriver).Msg("demo catalogue seeded")
			}
		}
		log.Info().Str("repository", cfg.DBDriver).Msg("repository ready")
		return db, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// openHistoryCache prefers Redis and falls back to a process-local cache when
// Redis is not configured or unreachable. A zero TTL disables caching.
func openHistoryCache(ctx context.Context, cfg config.Config) (cache.StockHistoryCache, func() error) {
	if cfg.HistoryCacheTTL() <= 0 {
		log.Info().Str("cache", "noop").Msg("stock history cache ready")
		return cache.NoopStockHistoryCache{}, nil
	}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisStockHistoryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-process cache")
			_ = redisCache.Close()
		} else {
			log.Info().Str("cache", "redis").Msg("stock history cache ready")
			return redisCache, redisCache.Close
		}
	}
	log.Info().Str("cache", "memory").Msg("stock history cache ready")
	return cache.NewMemoryStockHistoryCache(), nil
}

func openPublisher(cfg config.Config) (events.Publisher, func() error) {
	if cfg.AMQPURL == "" {
		log.Info().Str("events", "noop").Msg("event publisher ready")
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, events disabled")
		return events.NoopPublisher{}, nil
	}
	log.Info().Str("events", "rabbitmq").Str("exchange", cfg.AMQPExchange).Msg("event publisher ready")
	return publisher, publisher.Close
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if strings.TrimSpace(cfg.OperatorUsername) == "" {
		return fmt.Errorf("OPERATOR_USERNAME must be set")
	}
	if err := validatePasswordStrength(cfg.OperatorPassword); err != nil {
		return fmt.Errorf("OPERATOR_PASSWORD is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength requires at least 10 characters mixing letters and
// digits, and rejects a short list of well-known passwords.
func validatePasswordStrength(password string) error {
	known := map[string]bool{
		"password123": true, "password1234": true, "admin12345": true,
		"petcare123": true, "qwerty12345": true, "1234567890a": true,
	}
	if len(password) < 10 {
		return fmt.Errorf("must be at least 10 characters")
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	var letters, digits bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letters = true
		case unicode.IsDigit(r):
			digits = true
		}
	}
	if !letters || !digits {
		return fmt.Errorf("must mix letters and digits")
	}
	return nil
}
