package sqlstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
	"petcare/backend/internal/store"
)

type sqlTx struct {
	tx      *sqlx.Tx
	dialect dialect
}

func (t *sqlTx) GetItems(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error) {
	out := make(map[string]domain.InventoryItem, len(ids))
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM inventory_items WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	if err := t.tx.SelectContext(ctx, &rows, t.tx.Rebind(query), args...); err != nil {
		return nil, err
	}

	query, args, err = sqlx.In(ingredientQuery+` WHERE g.parent_id IN (?) ORDER BY g.parent_id, g.edge_order`, ids)
	if err != nil {
		return nil, err
	}
	var edges []ingredientRow
	if err := t.tx.SelectContext(ctx, &edges, t.tx.Rebind(query), args...); err != nil {
		return nil, err
	}

	byParent := groupIngredients(edges)
	for _, row := range rows {
		item := row.toDomain()
		item.Ingredients = byParent[item.ID]
		out[item.ID] = item
	}
	return out, nil
}

func (t *sqlTx) LockItems(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	ids = uniqueSorted(ids)
	out := make(map[string]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT id, stock FROM inventory_items WHERE id IN (?) ORDER BY id`+t.dialect.forUpdate, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID    string          `db:"id"`
		Stock decimal.Decimal `db:"stock"`
	}
	if err := t.tx.SelectContext(ctx, &rows, t.tx.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Stock
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
		}
	}
	return out, nil
}

func (t *sqlTx) SetStock(ctx context.Context, itemID string, stock decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(`UPDATE inventory_items SET stock = ? WHERE id = ?`), stock, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("item %s: %w", itemID, store.ErrNotFound)
	}
	return nil
}

func (t *sqlTx) InsertStockLog(ctx context.Context, entry domain.StockLogEntry) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
		INSERT INTO stock_logs (id, item_id, action, qty, delta, reason, created_at)
		VALUES (?,?,?,?,?,?,?)
	`), entry.ID, entry.ItemID, entry.Action, entry.Quantity, entry.Delta, entry.Reason, entry.CreatedAt.UTC())
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("stock log %s: %w", entry.ID, store.ErrConflict)
	}
	return err
}

func (t *sqlTx) CreateItem(ctx context.Context, item domain.InventoryItem) error {
	if item.ID == "" || item.Name == "" {
		return store.ErrInvalidInput
	}

	if len(item.Ingredients) > 0 {
		children := make([]string, 0, len(item.Ingredients))
		for _, edge := range item.Ingredients {
			children = append(children, edge.ChildID)
		}
		found, err := t.GetItems(ctx, children)
		if err != nil {
			return err
		}
		for _, id := range children {
			if _, ok := found[id]; !ok {
				return fmt.Errorf("ingredient %s: %w", id, store.ErrNotFound)
			}
		}
	}

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
		INSERT INTO inventory_items (
			id, name, sku, kind, is_composite, price, stock, sale_deduct_qty, sale_deduct_unit,
			unit_level1, unit_level2, unit_ratio_2, unit_level3, unit_ratio_3, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`),
		item.ID, item.Name, nullIfEmpty(item.SKU), item.Kind, item.IsComposite, item.Price, decimal.Zero,
		item.SaleDeductQty, item.SaleDeductUnit,
		item.Units.Level1, item.Units.Level2, item.Units.Ratio2, item.Units.Level3, item.Units.Ratio3,
		createdAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %s: %w", item.ID, store.ErrConflict)
		}
		return err
	}

	for i, edge := range item.Ingredients {
		_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
			INSERT INTO ingredients (parent_id, child_id, qty_needed, edge_order)
			VALUES (?,?,?,?)
		`), item.ID, edge.ChildID, edge.Quantity, i)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("ingredient %s listed twice: %w", edge.ChildID, store.ErrInvalidInput)
			}
			return err
		}
	}
	return nil
}

func (t *sqlTx) InsertTransaction(ctx context.Context, tx domain.Transaction) error {
	var taxInfo any
	if len(tx.TaxInfo) > 0 {
		taxInfo = string(tx.TaxInfo)
	}
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
		INSERT INTO transactions (id, total, payment_type, receipt_type, tax_info, customer_id, customer_name, created_at)
		VALUES (?,?,?,?,?,?,?,?)
	`), tx.ID, tx.Total, tx.PaymentType, tx.ReceiptType, taxInfo, nullIfEmpty(tx.CustomerID), tx.CustomerName, tx.CreatedAt.UTC())
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("transaction %s: %w", tx.ID, store.ErrConflict)
	}
	return err
}

func (t *sqlTx) InsertTransactionItem(ctx context.Context, item domain.TransactionItem) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
		INSERT INTO transaction_items (id, transaction_id, item_id, name, quantity, unit_price, pet_id, pet_name, staff_id, room_id)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`),
		item.ID, item.TransactionID, item.ItemID, item.Name, item.Quantity, item.UnitPrice,
		nullIfEmpty(item.PetID), item.PetName, nullIfEmpty(item.StaffID), nullIfEmpty(item.RoomID),
	)
	return err
}

func (t *sqlTx) LockResources(ctx context.Context, ids []string) error {
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT id FROM resources WHERE id IN (?) ORDER BY id`+t.dialect.forUpdate, ids)
	if err != nil {
		return err
	}
	var found []string
	if err := t.tx.SelectContext(ctx, &found, t.tx.Rebind(query), args...); err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	seen := make(map[string]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("resource %s: %w", id, store.ErrNotFound)
		}
	}
	return nil
}

func (t *sqlTx) ListActiveBookings(ctx context.Context, staffID string, roomID string, start time.Time, end time.Time) ([]domain.Booking, error) {
	resourceClauses := make([]string, 0, 2)
	args := make([]any, 0, 5)
	if staffID != "" {
		resourceClauses = append(resourceClauses, "staff_id = ?")
		args = append(args, staffID)
	}
	if roomID != "" {
		resourceClauses = append(resourceClauses, "room_id = ?")
		args = append(args, roomID)
	}
	if len(resourceClauses) == 0 {
		return []domain.Booking{}, nil
	}
	args = append(args, domain.BookingStatusCancelled, end.UTC(), start.UTC())

	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE (` + strings.Join(resourceClauses, " OR ") + `)
		AND status <> ? AND start_time < ? AND end_time > ?
		ORDER BY start_time, id`

	var rows []bookingRow
	if err := t.tx.SelectContext(ctx, &rows, t.tx.Rebind(query), args...); err != nil {
		return nil, err
	}
	return bookingsFromRows(rows), nil
}

func (t *sqlTx) InsertBooking(ctx context.Context, b domain.Booking) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`
		INSERT INTO bookings (
			id, customer_id, pet_id, service_id, staff_id, room_id,
			start_time, end_time, status, actual_start, actual_end, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`),
		b.ID, b.CustomerID, b.PetID, b.ServiceID, nullIfEmpty(b.StaffID), nullIfEmpty(b.RoomID),
		b.StartTime.UTC(), b.EndTime.UTC(), b.Status, nullTime(b.ActualStart), nullTime(b.ActualEnd), b.CreatedAt.UTC(),
	)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("booking %s: %w", b.ID, store.ErrConflict)
	}
	return err
}

func (t *sqlTx) UpdateBooking(ctx context.Context, id string, status string, actualStart *time.Time, actualEnd *time.Time) (*domain.Booking, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if status != "" {
		sets = append(sets, "status = ?")
		args = append(args, status)
	}
	if actualStart != nil {
		sets = append(sets, "actual_start = ?")
		args = append(args, actualStart.UTC())
	}
	if actualEnd != nil {
		sets = append(sets, "actual_end = ?")
		args = append(args, actualEnd.UTC())
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := t.tx.ExecContext(ctx, t.tx.Rebind(`UPDATE bookings SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("booking %s: %w", id, store.ErrNotFound)
		}
	}

	var row bookingRow
	err := t.tx.GetContext(ctx, &row, t.tx.Rebind(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("booking %s: %w", id, store.ErrNotFound)
		}
		return nil, err
	}
	updated := row.toDomain()
	return &updated, nil
}

func (t *sqlTx) CreateResource(ctx context.Context, r domain.Resource) error {
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(`INSERT INTO resources (id, name, type) VALUES (?,?,?)`), r.ID, r.Name, r.Type)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("resource %s: %w", r.ID, store.ErrConflict)
	}
	return err
}

func (t *sqlTx) resourceExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := t.tx.GetContext(ctx, &count, t.tx.Rebind(`SELECT COUNT(*) FROM resources WHERE id = ?`), id); err != nil {
		return false, err
	}
	return count > 0, nil
}

// uniqueSorted returns ids without blanks or duplicates in ascending order,
// the order every locking query takes rows in.
func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
