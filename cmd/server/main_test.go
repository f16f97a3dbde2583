package main

import (
	"context"
	"path/filepath"
	"testing"

	"petcare/backend/internal/cache"
	"petcare/backend/internal/config"
	"petcare/backend/internal/events"
	"petcare/backend/internal/store"
	"petcare/backend/internal/store/sqlstore"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := []config.Config{
		{AuthSecret: "short", OperatorUsername: "operator", OperatorPassword: "Kennel-2026-x"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorUsername: "operator", OperatorPassword: "short1"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorUsername: "operator", OperatorPassword: "Password123"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorUsername: "operator", OperatorPassword: "onlyletterslong"},
		{AuthSecret: "0123456789abcdef0123456789abcdef", OperatorUsername: " ", OperatorPassword: "Kennel-2026-x"},
	}
	for i, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("case %d: expected weak security config to be rejected", i)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:       "0123456789abcdef0123456789abcdef",
		OperatorUsername: "operator",
		OperatorPassword: "Kennel-2026-x",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenRepositoryMemory(t *testing.T) {
	repo, err := openRepository(context.Background(), config.Config{DBDriver: "memory", SeedOnStart: true})
	if err != nil {
		t.Fatalf("open memory repository: %v", err)
	}
	defer repo.Close()

	if _, err := repo.GetItem(context.Background(), store.SeedGroomingID); err != nil {
		t.Fatalf("expected seeded catalogue, got %v", err)
	}
}

func TestOpenRepositorySQLiteSeeds(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "petcare.db")
	repo, err := openRepository(context.Background(), config.Config{
		DBDriver:    sqlstore.DriverSQLite,
		DatabaseURL: dsn,
		SeedOnStart: true,
	})
	if err != nil {
		t.Fatalf("open sqlite repository: %v", err)
	}
	defer repo.Close()

	items, err := repo.ListInventory(context.Background())
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 seeded items, got %d", len(items))
	}
}

func TestOpenRepositoryRejectsBadConfig(t *testing.T) {
	if _, err := openRepository(context.Background(), config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected unknown driver to be rejected")
	}
	if _, err := openRepository(context.Background(), config.Config{DBDriver: sqlstore.DriverPostgres}); err == nil {
		t.Fatal("expected missing DATABASE_URL to be rejected")
	}
}

func TestOpenHistoryCacheFallbacks(t *testing.T) {
	ctx := context.Background()

	history, closeFn := openHistoryCache(ctx, config.Config{HistoryCacheTTLSeconds: 0})
	if _, ok := history.(cache.NoopStockHistoryCache); !ok || closeFn != nil {
		t.Fatalf("expected noop cache for zero TTL, got %T", history)
	}

	history, closeFn = openHistoryCache(ctx, config.Config{HistoryCacheTTLSeconds: 15})
	if _, ok := history.(*cache.MemoryStockHistoryCache); !ok || closeFn != nil {
		t.Fatalf("expected memory cache without redis, got %T", history)
	}
}

func TestOpenPublisherWithoutBroker(t *testing.T) {
	publisher, closeFn := openPublisher(config.Config{})
	if _, ok := publisher.(events.NoopPublisher); !ok || closeFn != nil {
		t.Fatalf("expected noop publisher, got %T", publisher)
	}
}
