package cache

import (
	"context"
	"sync"
	"time"

	"petcare/backend/internal/domain"
)

// StockHistoryCache holds recent stock-history pages keyed by page size. Any
// ledger write must call Invalidate once its transaction has committed.
//
// Get reports the cache version current at lookup time. A caller that misses
// reads the store and hands that version back to Set; a page whose version
// was invalidated in between is never served.
type StockHistoryCache interface {
	Get(ctx context.Context, limit int) (entries []domain.StockLogEntry, version int64, ok bool, err error)
	Set(ctx context.Context, limit int, version int64, entries []domain.StockLogEntry, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopStockHistoryCache struct{}

func (NoopStockHistoryCache) Get(_ context.Context, _ int) ([]domain.StockLogEntry, int64, bool, error) {
	return nil, 0, false, nil
}

func (NoopStockHistoryCache) Set(_ context.Context, _ int, _ int64, _ []domain.StockLogEntry, _ time.Duration) error {
	return nil
}

func (NoopStockHistoryCache) Invalidate(_ context.Context) error {
	return nil
}

// MemoryStockHistoryCache is a process-local cache for single-instance
// deployments without Redis.
type MemoryStockHistoryCache struct {
	mu         sync.Mutex
	now        func() time.Time
	generation int64
	entries    map[int]memoryPage
}

type memoryPage struct {
	entries   []domain.StockLogEntry
	expiresAt time.Time
}

func NewMemoryStockHistoryCache() *MemoryStockHistoryCache {
	return &MemoryStockHistoryCache{
		now:     time.Now,
		entries: make(map[int]memoryPage),
	}
}

func (c *MemoryStockHistoryCache) Get(_ context.Context, limit int) ([]domain.StockLogEntry, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, ok := c.entries[limit]
	if !ok {
		return nil, c.generation, false, nil
	}
	if !page.expiresAt.IsZero() && !c.now().Before(page.expiresAt) {
		delete(c.entries, limit)
		return nil, c.generation, false, nil
	}
	return append([]domain.StockLogEntry(nil), page.entries...), c.generation, true, nil
}

// Set drops the page when an Invalidate happened after the caller's Get.
func (c *MemoryStockHistoryCache) Set(_ context.Context, limit int, version int64, entries []domain.StockLogEntry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.generation {
		return nil
	}
	page := memoryPage{entries: append([]domain.StockLogEntry(nil), entries...)}
	if ttl > 0 {
		page.expiresAt = c.now().Add(ttl)
	}
	c.entries[limit] = page
	return nil
}

func (c *MemoryStockHistoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	clear(c.entries)
	return nil
}
