package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/bom"
	"petcare/backend/internal/domain"
	"petcare/backend/internal/events"
	"petcare/backend/internal/ledger"
	"petcare/backend/internal/store"
	"petcare/backend/internal/xid"
)

// Checkout records a sale atomically: the transaction header, one item row
// per cart line and one SALE ledger entry per BOM deduction are committed
// together or not at all.
func (s *Service) Checkout(ctx context.Context, req domain.OrderRequest) (domain.OrderResponse, error) {
	lines, err := normalizeLines(req.Items)
	if err != nil {
		return domain.OrderResponse{}, err
	}
	if req.Total != nil && req.Total.IsNegative() {
		return domain.OrderResponse{}, invalidInput("total must not be negative")
	}
	if len(req.TaxInfo) > 0 && !json.Valid(req.TaxInfo) {
		return domain.OrderResponse{}, invalidInput("tax info must be valid JSON")
	}

	header := domain.Transaction{
		ID:           xid.New("tx"),
		PaymentType:  defaultString(req.PaymentType, s.defaultPaymentType),
		ReceiptType:  defaultString(req.ReceiptType, s.defaultReceiptType),
		TaxInfo:      req.TaxInfo,
		CustomerID:   strings.TrimSpace(req.CustomerID),
		CustomerName: strings.TrimSpace(req.CustomerName),
		CreatedAt:    s.now().UTC(),
	}

	var (
		created    domain.Transaction
		deductions []domain.StockDeduction
	)
	err = s.repo.InTx(ctx, func(tx store.Tx) error {
		created, deductions = domain.Transaction{}, nil

		items, err := tx.GetItems(ctx, uniqueLineIDs(lines))
		if err != nil {
			return err
		}
		plan := make([][]bom.Deduction, len(lines))
		touched := make([]string, 0, len(lines))
		for i, line := range lines {
			item, ok := items[line.ID]
			if !ok {
				return fmt.Errorf("item %s: %w", line.ID, store.ErrNotFound)
			}
			plan[i] = bom.Resolve(item, item.Ingredients, line.Qty)
			touched = append(touched, bom.Touched(plan[i])...)
		}
		if _, err := tx.LockItems(ctx, touched); err != nil {
			return err
		}

		txItems := make([]domain.TransactionItem, 0, len(lines))
		computed := decimal.Zero
		for _, line := range lines {
			item := items[line.ID]
			price := item.Price
			if line.Price != nil {
				price = *line.Price
			}
			computed = computed.Add(price.Mul(decimal.NewFromInt(int64(line.Qty))))
			txItems = append(txItems, domain.TransactionItem{
				ID:        xid.New("ti"),
				ItemID:    item.ID,
				Name:      defaultString(line.Name, item.Name),
				Quantity:  line.Qty,
				UnitPrice: price,
				PetID:     strings.TrimSpace(line.PetID),
				PetName:   strings.TrimSpace(line.PetName),
				StaffID:   strings.TrimSpace(line.StaffID),
				RoomID:    strings.TrimSpace(line.RoomID),
			})
		}

		record := header
		record.Total = computed
		if req.Total != nil {
			record.Total = *req.Total
		}
		if err := tx.InsertTransaction(ctx, record); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		summary := newDeductionSummary()
		reason := ledger.SaleReason(record.ID)
		for i := range txItems {
			txItems[i].TransactionID = record.ID
			if err := tx.InsertTransactionItem(ctx, txItems[i]); err != nil {
				return fmt.Errorf("insert transaction item: %w", err)
			}
			for _, d := range plan[i] {
				if d.Quantity.IsZero() {
					continue
				}
				entry, err := ledger.Apply(ctx, tx, d.ItemID, d.Quantity.Neg(), domain.StockActionSale, reason)
				if err != nil {
					return err
				}
				summary.add(d.ItemID, d.Quantity, entry.Quantity)
			}
		}

		record.Items = txItems
		created = record
		deductions = summary.list()
		return nil
	})
	if err != nil {
		return domain.OrderResponse{}, err
	}

	s.logger.Info().
		Str("transaction_id", created.ID).
		Str("total", created.Total.String()).
		Int("lines", len(created.Items)).
		Msg("checkout committed")

	s.afterCommit(ctx, true, events.TransactionCreated, domain.TransactionEvent{
		TransactionID: created.ID,
		Total:         created.Total,
		PaymentType:   created.PaymentType,
		ItemCount:     len(created.Items),
		Deductions:    deductions,
		CreatedAt:     created.CreatedAt,
	})

	return domain.OrderResponse{
		Success:     true,
		Transaction: created,
		Deductions:  deductions,
	}, nil
}

func normalizeLines(items []domain.OrderLine) ([]domain.OrderLine, error) {
	if len(items) == 0 {
		return nil, invalidInput("cart is empty")
	}
	lines := make([]domain.OrderLine, 0, len(items))
	for i, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			return nil, invalidInput("line %d: item id is required", i+1)
		}
		if item.Qty < 1 {
			return nil, invalidInput("line %d: quantity must be at least 1", i+1)
		}
		if item.Price != nil && item.Price.IsNegative() {
			return nil, invalidInput("line %d: price must not be negative", i+1)
		}
		lines = append(lines, item)
	}
	return lines, nil
}

func uniqueLineIDs(lines []domain.OrderLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ID]; ok {
			continue
		}
		seen[line.ID] = struct{}{}
		ids = append(ids, line.ID)
	}
	return ids
}

// deductionSummary totals a sale's deductions per item in first-seen order.
type deductionSummary struct {
	order  []string
	totals map[string]*domain.StockDeduction
}

func newDeductionSummary() *deductionSummary {
	return &deductionSummary{totals: make(map[string]*domain.StockDeduction)}
}

func (d *deductionSummary) add(itemID string, qty decimal.Decimal, logged int64) {
	total, ok := d.totals[itemID]
	if !ok {
		total = &domain.StockDeduction{ItemID: itemID}
		d.totals[itemID] = total
		d.order = append(d.order, itemID)
	}
	total.Quantity = total.Quantity.Add(qty)
	total.Logged += logged
}

func (d *deductionSummary) list() []domain.StockDeduction {
	out := make([]domain.StockDeduction, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.totals[id])
	}
	return out
}
