package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
	"petcare/backend/internal/store"
)

func TestInTxRollsBackOnError(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.SetStock(ctx, store.SeedShampooID, decimal.NewFromInt(1)); err != nil {
			return err
		}
		if err := tx.InsertStockLog(ctx, domain.StockLogEntry{ID: "log-x", ItemID: store.SeedShampooID, Delta: decimal.NewFromInt(-4999)}); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, domain.Transaction{ID: "tx-1"}); err != nil {
			return err
		}
		if err := tx.InsertTransactionItem(ctx, domain.TransactionItem{ID: "ti-1", TransactionID: "tx-1", ItemID: store.SeedShampooID}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	item, _ := s.GetItem(ctx, store.SeedShampooID)
	if !item.Stock.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("stock not restored: %s", item.Stock)
	}
	if _, err := s.FindTransactionByID(ctx, "tx-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("transaction should be gone, got %v", err)
	}
	logs, _ := s.ListStockLogs(ctx, store.SeedShampooID, 0)
	if len(logs) != 1 {
		t.Fatalf("expected only the seed entry, got %d", len(logs))
	}
}

func TestInTxRollsBackWhenContextCancelled(t *testing.T) {
	s := NewSeeded()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.SetStock(ctx, store.SeedDogFoodID, decimal.NewFromInt(0)); err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	item, _ := s.GetItem(context.Background(), store.SeedDogFoodID)
	if !item.Stock.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("stock not restored: %s", item.Stock)
	}
}

func TestCreateItemRollbackRemovesItem(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.InTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateItem(ctx, domain.InventoryItem{ID: "new", Name: "New"}); err != nil {
			return err
		}
		return store.ErrInvalidInput
	})
	items, _ := s.ListInventory(ctx)
	if len(items) != 0 {
		t.Fatalf("expected empty inventory, got %d", len(items))
	}
}

func TestLockItemsUnknownID(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	err := s.InTx(ctx, func(tx store.Tx) error {
		_, err := tx.LockItems(ctx, []string{store.SeedShampooID, "ghost"})
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListTransactionsByCustomerNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.InTx(ctx, func(tx store.Tx) error {
		for _, txn := range []domain.Transaction{
			{ID: "tx-1", CustomerID: "cust-a"},
			{ID: "tx-2", CustomerID: "cust-b"},
			{ID: "tx-3", CustomerID: "cust-a"},
			{ID: "tx-4"},
		} {
			if err := tx.InsertTransaction(ctx, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListTransactionsByCustomer(ctx, "cust-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "tx-3" || got[1].ID != "tx-1" {
		t.Fatalf("unexpected transactions %+v", got)
	}
	if none, _ := s.ListTransactionsByCustomer(ctx, "cust-z"); none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestLockResourcesSkipsBlankIDs(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	cases := [][]string{
		{store.SeedVetStaffID, ""},
		{"", store.SeedExamRoomID},
		{"", ""},
		{store.SeedVetStaffID, store.SeedVetStaffID},
	}
	for _, ids := range cases {
		err := s.InTx(ctx, func(tx store.Tx) error {
			return tx.LockResources(ctx, ids)
		})
		if err != nil {
			t.Fatalf("LockResources(%q): %v", ids, err)
		}
	}

	err := s.InTx(ctx, func(tx store.Tx) error {
		return tx.LockResources(ctx, []string{"", "res-ghost"})
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown resource, got %v", err)
	}
}

func TestListActiveBookingsFiltersByResourceAndStatus(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	bookings := []domain.Booking{
		{ID: "bk-1", StaffID: store.SeedVetStaffID, StartTime: base, EndTime: base.Add(30 * time.Minute), Status: domain.BookingStatusConfirmed},
		{ID: "bk-2", StaffID: store.SeedVetStaffID, StartTime: base, EndTime: base.Add(30 * time.Minute), Status: domain.BookingStatusCancelled},
		{ID: "bk-3", RoomID: store.SeedExamRoomID, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.BookingStatusConfirmed},
		{ID: "bk-4", StaffID: store.SeedGroomerID, StartTime: base, EndTime: base.Add(time.Hour), Status: domain.BookingStatusConfirmed},
	}
	err := s.InTx(ctx, func(tx store.Tx) error {
		for _, b := range bookings {
			if err := tx.InsertBooking(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert bookings: %v", err)
	}

	var got []domain.Booking
	_ = s.InTx(ctx, func(tx store.Tx) error {
		got, err = tx.ListActiveBookings(ctx, store.SeedVetStaffID, store.SeedExamRoomID, base.Add(15*time.Minute), base.Add(45*time.Minute))
		return err
	})
	if len(got) != 2 || got[0].ID != "bk-1" || got[1].ID != "bk-3" {
		t.Fatalf("unexpected bookings %+v", got)
	}
}

func TestListStockLogsNewestFirstWithNames(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	_ = s.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertStockLog(ctx, domain.StockLogEntry{ID: "log-late", ItemID: store.SeedDogFoodID, Delta: decimal.NewFromInt(-1), Quantity: 1})
	})
	logs, err := s.ListStockLogs(ctx, "", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != "log-late" || logs[0].ItemName != "Dog Food 1kg" {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestSeedIncludesGroomingEdge(t *testing.T) {
	s := NewSeeded()
	item, err := s.GetItem(context.Background(), store.SeedGroomingID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !item.IsComposite || len(item.Ingredients) != 1 || item.Ingredients[0].ChildID != store.SeedShampooID {
		t.Fatalf("unexpected grooming item %+v", item)
	}
	if !item.Ingredients[0].Quantity.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected edge qty %s", item.Ingredients[0].Quantity)
	}
}
