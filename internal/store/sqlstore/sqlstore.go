// Package sqlstore implements store.Repository on PostgreSQL, SQLite and
// MySQL through sqlx. Queries are written with ? placeholders and rebound for
// the active driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"petcare/backend/internal/domain"
	"petcare/backend/internal/store"
)

const maxTxAttempts = 3

type Store struct {
	db      *sqlx.DB
	dialect dialect
}

// Open connects to the database named by driver (postgres, sqlite or mysql)
// and creates any missing tables.
func Open(ctx context.Context, driver string, dataSource string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	dsn, err := d.dsn(dataSource)
	if err != nil {
		return nil, fmt.Errorf("parse %s dsn: %w", d.name, err)
	}

	db, err := sqlx.Open(d.driverName, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(d.maxOpen)
	db.SetMaxIdleConns(min(d.maxOpen, 8))
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Driver is the dialect name in use.
func (s *Store) Driver() string {
	return s.dialect.name
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.name, err)
		}
	}
	return nil
}

// Seed loads store.SeedCatalog when the inventory is empty. It reports
// whether anything was written.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items`); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	catalog := store.SeedCatalog(time.Now().UTC())
	err := s.InTx(ctx, func(tx store.Tx) error {
		t := tx.(*sqlTx)
		for _, r := range catalog.Resources {
			exists, err := t.resourceExists(ctx, r.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := t.CreateResource(ctx, r); err != nil {
				return err
			}
		}
		for _, item := range catalog.Items {
			opening := item.Stock
			if err := t.CreateItem(ctx, item); err != nil {
				return err
			}
			if !opening.IsPositive() {
				continue
			}
			if err := t.SetStock(ctx, item.ID, opening); err != nil {
				return err
			}
			if err := t.InsertStockLog(ctx, store.OpeningEntry(item)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	return true, nil
}

// InTx runs fn inside a database transaction, retrying a bounded number of
// times when the database reports a deadlock or serialization failure.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || attempt >= maxTxAttempts || !s.dialect.retryable(err) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("driver", s.dialect.name).Msg("retrying transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
}

func (s *Store) runTx(ctx context.Context, fn func(tx store.Tx) error) error {
	dbTx, err := s.db.BeginTxx(ctx, s.dialect.txOptions)
	if err != nil {
		return err
	}
	defer func() { _ = dbTx.Rollback() }()

	if err := fn(&sqlTx{tx: dbTx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return dbTx.Commit()
}

func (s *Store) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	var edges []ingredientRow
	if err := s.db.SelectContext(ctx, &edges, ingredientQuery+` ORDER BY g.parent_id, g.edge_order`); err != nil {
		return nil, err
	}

	byParent := groupIngredients(edges)
	items := make([]domain.InventoryItem, 0, len(rows))
	for _, row := range rows {
		item := row.toDomain()
		item.Ingredients = byParent[item.ID]
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var row itemRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var edges []ingredientRow
	if err := s.db.SelectContext(ctx, &edges, s.db.Rebind(ingredientQuery+` WHERE g.parent_id = ? ORDER BY g.edge_order`), id); err != nil {
		return nil, err
	}

	item := row.toDomain()
	item.Ingredients = groupIngredients(edges)[id]
	return &item, nil
}

func (s *Store) ListStockLogs(ctx context.Context, itemID string, limit int) ([]domain.StockLogEntry, error) {
	query := `
		SELECT l.id, l.item_id, COALESCE(i.name, '') AS item_name, l.action, l.qty, l.delta, l.reason, l.created_at
		FROM stock_logs l
		LEFT JOIN inventory_items i ON i.id = l.item_id`
	args := make([]any, 0, 2)
	if itemID != "" {
		query += ` WHERE l.item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY l.seq DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []stockLogRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	entries := make([]domain.StockLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY seq DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.selectTransactions(ctx, query, args...)
}

// ListTransactionsByCustomer returns every transaction recorded against
// customerID, newest first.
func (s *Store) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE customer_id = ? ORDER BY seq DESC`
	return s.selectTransactions(ctx, query, customerID)
}

func (s *Store) selectTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	var rows []transactionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Transaction{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	itemsByTx, err := s.transactionItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := row.toDomain()
		tx.Items = itemsByTx[tx.ID]
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var row transactionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	itemsByTx, err := s.transactionItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	tx := row.toDomain()
	tx.Items = itemsByTx[id]
	return &tx, nil
}

func (s *Store) transactionItems(ctx context.Context, txIDs []string) (map[string][]domain.TransactionItem, error) {
	query, args, err := sqlx.In(`SELECT `+transactionItemColumns+` FROM transaction_items WHERE transaction_id IN (?) ORDER BY seq`, txIDs)
	if err != nil {
		return nil, err
	}
	var rows []transactionItemRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	out := make(map[string][]domain.TransactionItem, len(txIDs))
	for _, row := range rows {
		out[row.TransactionID] = append(out[row.TransactionID], row.toDomain())
	}
	return out, nil
}

func (s *Store) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1 = 1`
	args := make([]any, 0, 2)
	if filter.From != nil {
		query += ` AND end_time > ?`
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		query += ` AND start_time < ?`
		args = append(args, filter.To.UTC())
	}
	query += ` ORDER BY start_time, id`

	var rows []bookingRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return bookingsFromRows(rows), nil
}

func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	var resources []domain.Resource
	if err := s.db.SelectContext(ctx, &resources, `SELECT id, name, type FROM resources ORDER BY id`); err != nil {
		return nil, err
	}
	return resources, nil
}
