package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
	"petcare/backend/internal/store"
)

// Store keeps everything in process memory. Transactions run one at a time
// under the write lock and undo their writes when they fail.
type Store struct {
	mu           sync.RWMutex
	items        map[string]domain.InventoryItem
	itemOrder    []string
	ingredients  map[string][]domain.Ingredient
	stockLogs    []domain.StockLogEntry
	transactions map[string]domain.Transaction
	txOrder      []string
	bookings     map[string]domain.Booking
	bookingOrder []string
	resources    map[string]domain.Resource
}

func New() *Store {
	return &Store{
		items:        make(map[string]domain.InventoryItem),
		ingredients:  make(map[string][]domain.Ingredient),
		transactions: make(map[string]domain.Transaction),
		bookings:     make(map[string]domain.Booking),
		resources:    make(map[string]domain.Resource),
	}
}

// NewSeeded returns a store loaded with store.SeedCatalog.
func NewSeeded() *Store {
	s := New()
	catalog := store.SeedCatalog(time.Now().UTC())

	for _, resource := range catalog.Resources {
		s.putResource(resource)
	}
	for _, item := range catalog.Items {
		edges := item.Ingredients
		s.putItem(item)
		if len(edges) > 0 {
			s.ingredients[item.ID] = append([]domain.Ingredient(nil), edges...)
		}
		if item.Stock.IsPositive() {
			s.stockLogs = append(s.stockLogs, store.OpeningEntry(item))
		}
	}
	return s
}

func (s *Store) putItem(item domain.InventoryItem) {
	if _, exists := s.items[item.ID]; !exists {
		s.itemOrder = append(s.itemOrder, item.ID)
	}
	item.Ingredients = nil
	s.items[item.ID] = item
}

func (s *Store) putResource(resource domain.Resource) {
	s.resources[resource.ID] = resource
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &memTx{s: s}
	err := fn(t)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		t.rollback()
		return err
	}
	return nil
}

func (s *Store) ListInventory(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		items = append(items, s.withIngredients(s.items[id]))
	}
	return items, nil
}

func (s *Store) GetItem(_ context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	full := s.withIngredients(item)
	return &full, nil
}

func (s *Store) ListStockLogs(_ context.Context, itemID string, limit int) ([]domain.StockLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = len(s.stockLogs)
	}
	out := make([]domain.StockLogEntry, 0, min(limit, len(s.stockLogs)))
	for i := len(s.stockLogs) - 1; i >= 0 && len(out) < limit; i-- {
		entry := s.stockLogs[i]
		if itemID != "" && entry.ItemID != itemID {
			continue
		}
		entry.ItemName = s.items[entry.ItemID].Name
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = len(s.txOrder)
	}
	out := make([]domain.Transaction, 0, min(limit, len(s.txOrder)))
	for i := len(s.txOrder) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cloneTransaction(s.transactions[s.txOrder[i]]))
	}
	return out, nil
}

func (s *Store) ListTransactionsByCustomer(_ context.Context, customerID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Transaction{}
	for i := len(s.txOrder) - 1; i >= 0; i-- {
		tx := s.transactions[s.txOrder[i]]
		if tx.CustomerID == customerID {
			out = append(out, cloneTransaction(tx))
		}
	}
	return out, nil
}

func (s *Store) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := cloneTransaction(tx)
	return &clone, nil
}

func (s *Store) ListBookings(_ context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, 0, len(s.bookingOrder))
	for _, id := range s.bookingOrder {
		b := s.bookings[id]
		if filter.From != nil && !b.EndTime.After(*filter.From) {
			continue
		}
		if filter.To != nil && !b.StartTime.Before(*filter.To) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) ListResources(_ context.Context) ([]domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) withIngredients(item domain.InventoryItem) domain.InventoryItem {
	edges := s.ingredients[item.ID]
	if len(edges) == 0 {
		item.Ingredients = nil
		return item
	}
	item.Ingredients = make([]domain.Ingredient, 0, len(edges))
	for _, edge := range edges {
		edge.ChildName = s.items[edge.ChildID].Name
		item.Ingredients = append(item.Ingredients, edge)
	}
	return item
}

// memTx runs with Store.mu held for writing. Each mutation pushes an undo
// step; rollback replays them newest first.
type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) GetItems(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]domain.InventoryItem, len(ids))
	for _, id := range ids {
		item, ok := t.s.items[id]
		if !ok {
			continue
		}
		out[id] = t.s.withIngredients(item)
	}
	return out, nil
}

func (t *memTx) LockItems(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		item, ok := t.s.items[id]
		if !ok {
			return nil, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
		}
		out[id] = item.Stock
	}
	return out, nil
}

func (t *memTx) SetStock(ctx context.Context, itemID string, stock decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	item, ok := t.s.items[itemID]
	if !ok {
		return fmt.Errorf("item %s: %w", itemID, store.ErrNotFound)
	}
	previous := item.Stock
	item.Stock = stock
	t.s.items[itemID] = item
	t.undo = append(t.undo, func() {
		restored := t.s.items[itemID]
		restored.Stock = previous
		t.s.items[itemID] = restored
	})
	return nil
}

func (t *memTx) InsertStockLog(ctx context.Context, entry domain.StockLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.s.items[entry.ItemID]; !ok {
		return fmt.Errorf("item %s: %w", entry.ItemID, store.ErrNotFound)
	}
	entry.ItemName = ""
	t.s.stockLogs = append(t.s.stockLogs, entry)
	n := len(t.s.stockLogs)
	t.undo = append(t.undo, func() {
		t.s.stockLogs = t.s.stockLogs[:n-1]
	})
	return nil
}

func (t *memTx) CreateItem(ctx context.Context, item domain.InventoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.ID == "" || item.Name == "" {
		return store.ErrInvalidInput
	}
	if _, exists := t.s.items[item.ID]; exists {
		return fmt.Errorf("item %s already exists: %w", item.ID, store.ErrConflict)
	}
	if item.SKU != "" {
		for _, existing := range t.s.items {
			if existing.SKU == item.SKU {
				return fmt.Errorf("sku %s already exists: %w", item.SKU, store.ErrConflict)
			}
		}
	}
	for _, edge := range item.Ingredients {
		if _, ok := t.s.items[edge.ChildID]; !ok {
			return fmt.Errorf("ingredient %s: %w", edge.ChildID, store.ErrNotFound)
		}
	}

	edges := make([]domain.Ingredient, 0, len(item.Ingredients))
	for _, edge := range item.Ingredients {
		edge.ParentID = item.ID
		edge.ChildName = ""
		edges = append(edges, edge)
	}
	item.Stock = decimal.Zero
	t.s.putItem(item)
	if len(edges) > 0 {
		t.s.ingredients[item.ID] = edges
	}
	t.undo = append(t.undo, func() {
		delete(t.s.items, item.ID)
		delete(t.s.ingredients, item.ID)
		t.s.itemOrder = slices.DeleteFunc(t.s.itemOrder, func(id string) bool { return id == item.ID })
	})
	return nil
}

func (t *memTx) InsertTransaction(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := t.s.transactions[tx.ID]; exists {
		return fmt.Errorf("transaction %s already exists: %w", tx.ID, store.ErrConflict)
	}
	tx.Items = nil
	t.s.transactions[tx.ID] = tx
	t.s.txOrder = append(t.s.txOrder, tx.ID)
	n := len(t.s.txOrder)
	t.undo = append(t.undo, func() {
		delete(t.s.transactions, tx.ID)
		t.s.txOrder = t.s.txOrder[:n-1]
	})
	return nil
}

func (t *memTx) InsertTransactionItem(ctx context.Context, item domain.TransactionItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	header, ok := t.s.transactions[item.TransactionID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", item.TransactionID, store.ErrNotFound)
	}
	if _, ok := t.s.items[item.ItemID]; !ok {
		return fmt.Errorf("item %s: %w", item.ItemID, store.ErrNotFound)
	}
	header.Items = append(header.Items, item)
	t.s.transactions[item.TransactionID] = header
	t.undo = append(t.undo, func() {
		restored, ok := t.s.transactions[item.TransactionID]
		if !ok || len(restored.Items) == 0 {
			return
		}
		restored.Items = restored.Items[:len(restored.Items)-1]
		t.s.transactions[item.TransactionID] = restored
	})
	return nil
}

func (t *memTx) CreateResource(ctx context.Context, resource domain.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := t.s.resources[resource.ID]; exists {
		return fmt.Errorf("resource %s already exists: %w", resource.ID, store.ErrConflict)
	}
	t.s.resources[resource.ID] = resource
	t.undo = append(t.undo, func() {
		delete(t.s.resources, resource.ID)
	})
	return nil
}

func (t *memTx) LockResources(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Blank ids stand for "no staff" or "no room" and lock nothing.
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := t.s.resources[id]; !ok {
			return fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
		}
	}
	return nil
}

func (t *memTx) ListActiveBookings(ctx context.Context, staffID string, roomID string, start time.Time, end time.Time) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, 4)
	for _, id := range t.s.bookingOrder {
		b := t.s.bookings[id]
		if b.Status == domain.BookingStatusCancelled {
			continue
		}
		sameStaff := staffID != "" && b.StaffID == staffID
		sameRoom := roomID != "" && b.RoomID == roomID
		if !sameStaff && !sameRoom {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memTx) InsertBooking(ctx context.Context, booking domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := t.s.bookings[booking.ID]; exists {
		return fmt.Errorf("booking %s already exists: %w", booking.ID, store.ErrConflict)
	}
	t.s.bookings[booking.ID] = booking
	t.s.bookingOrder = append(t.s.bookingOrder, booking.ID)
	n := len(t.s.bookingOrder)
	t.undo = append(t.undo, func() {
		delete(t.s.bookings, booking.ID)
		t.s.bookingOrder = t.s.bookingOrder[:n-1]
	})
	return nil
}

func (t *memTx) UpdateBooking(ctx context.Context, id string, status string, actualStart *time.Time, actualEnd *time.Time) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	previous, ok := t.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, store.ErrNotFound)
	}
	updated := previous
	if status != "" {
		updated.Status = status
	}
	if actualStart != nil {
		at := actualStart.UTC()
		updated.ActualStart = &at
	}
	if actualEnd != nil {
		at := actualEnd.UTC()
		updated.ActualEnd = &at
	}
	t.s.bookings[id] = updated
	t.undo = append(t.undo, func() {
		t.s.bookings[id] = previous
	})
	return &updated, nil
}

func cloneTransaction(src domain.Transaction) domain.Transaction {
	dst := src
	dst.Items = append([]domain.TransactionItem(nil), src.Items...)
	if src.TaxInfo != nil {
		dst.TaxInfo = append([]byte(nil), src.TaxInfo...)
	}
	return dst
}
