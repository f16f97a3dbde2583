// Package ledger is the only writer of inventory stock. Every change is
// paired with an immutable stock log entry inside the caller's transaction,
// so an item's stock always equals the sum of its logged deltas.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/bom"
	"petcare/backend/internal/domain"
	"petcare/backend/internal/store"
	"petcare/backend/internal/xid"
)

// Apply adds delta to itemID's stock and appends the matching log entry.
// IN takes a positive delta, OUT and SALE a negative one. Stock may go
// negative.
func Apply(ctx context.Context, tx store.Tx, itemID string, delta decimal.Decimal, action string, reason string) (domain.StockLogEntry, error) {
	if err := checkDirection(action, delta); err != nil {
		return domain.StockLogEntry{}, err
	}

	current, err := tx.LockItems(ctx, []string{itemID})
	if err != nil {
		return domain.StockLogEntry{}, err
	}
	stock, ok := current[itemID]
	if !ok {
		return domain.StockLogEntry{}, fmt.Errorf("item %s: %w", itemID, store.ErrNotFound)
	}

	if err := tx.SetStock(ctx, itemID, stock.Add(delta)); err != nil {
		return domain.StockLogEntry{}, fmt.Errorf("update stock %s: %w", itemID, err)
	}

	entry := domain.StockLogEntry{
		ID:        xid.New("log"),
		ItemID:    itemID,
		Action:    action,
		Quantity:  bom.Rounded(delta),
		Delta:     delta,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.InsertStockLog(ctx, entry); err != nil {
		return domain.StockLogEntry{}, fmt.Errorf("append stock log %s: %w", itemID, err)
	}
	return entry, nil
}

func checkDirection(action string, delta decimal.Decimal) error {
	switch action {
	case domain.StockActionIn:
		if !delta.IsPositive() {
			return fmt.Errorf("%s requires a positive quantity: %w", action, store.ErrInvalidInput)
		}
	case domain.StockActionOut, domain.StockActionSale:
		if !delta.IsNegative() {
			return fmt.Errorf("%s requires a negative delta: %w", action, store.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("unknown stock action %q: %w", action, store.ErrInvalidInput)
	}
	return nil
}

// Replay sums the signed deltas of entries per item.
func Replay(entries []domain.StockLogEntry) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		totals[entry.ItemID] = totals[entry.ItemID].Add(entry.Delta)
	}
	return totals
}

// SaleReason is the log reason recorded for deductions caused by a sale.
func SaleReason(transactionID string) string {
	return "Sold via TX #" + transactionID
}
