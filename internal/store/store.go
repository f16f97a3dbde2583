package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Tx is one atomic unit of work. Every write made through a Tx is committed
// together or not at all. Row locks taken by LockItems and LockResources are
// held until the unit ends.
type Tx interface {
	GetItems(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error)
	// LockItems locks the given inventory rows in id order and returns their
	// current stock. Unknown ids yield ErrNotFound.
	LockItems(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
	SetStock(ctx context.Context, itemID string, stock decimal.Decimal) error
	InsertStockLog(ctx context.Context, entry domain.StockLogEntry) error
	CreateItem(ctx context.Context, item domain.InventoryItem) error

	InsertTransaction(ctx context.Context, tx domain.Transaction) error
	InsertTransactionItem(ctx context.Context, item domain.TransactionItem) error

	CreateResource(ctx context.Context, resource domain.Resource) error
	// LockResources locks staff/room rows so bookings on the same resource
	// run one at a time. Unknown ids yield ErrNotFound.
	LockResources(ctx context.Context, ids []string) error
	// ListActiveBookings returns non-cancelled bookings sharing staffID or
	// roomID (empty ids match nothing) whose interval overlaps [start, end).
	ListActiveBookings(ctx context.Context, staffID string, roomID string, start time.Time, end time.Time) ([]domain.Booking, error)
	InsertBooking(ctx context.Context, booking domain.Booking) error
	UpdateBooking(ctx context.Context, id string, status string, actualStart *time.Time, actualEnd *time.Time) (*domain.Booking, error)
}

type Repository interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ListInventory(ctx context.Context) ([]domain.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	ListStockLogs(ctx context.Context, itemID string, limit int) ([]domain.StockLogEntry, error)
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error)
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	Close() error
}
