package service

import (
	"context"
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

const initialStockNote = "initial stock"

func (s *Service) StockIn(ctx context.Context, req domain.StockMoveRequest) (domain.StockMoveResponse, error) {
	return s.moveStock(ctx, req, domain.StockActionIn)
}

func (s *Service) StockOut(ctx context.Context, req domain.StockMoveRequest) (domain.StockMoveResponse, error) {
	return s.moveStock(ctx, req, domain.StockActionOut)
}

func (s *Service) moveStock(ctx context.Context, req domain.StockMoveRequest, action string) (domain.StockMoveResponse, error) {
	itemID := strings.TrimSpace(req.ProductID)
	if itemID == "" {
		return domain.StockMoveResponse{}, invalidInput("product_id is required")
	}
	if !req.Qty.IsPositive() {
		return domain.StockMoveResponse{}, invalidInput("qty must be greater than zero")
	}

	delta := req.Qty
	if action == domain.StockActionOut {
		delta = delta.Neg()
	}

	var entry domain.StockLogEntry
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		var err error
		entry, err = ledger.Apply(ctx, tx, itemID, delta, action, strings.TrimSpace(req.Note))
		return err
	})
	if err != nil {
		return domain.StockMoveResponse{}, err
	}

	s.afterCommit(ctx, true, events.StockMoved, stockEvent(entry))
	return domain.StockMoveResponse{Success: true, Entry: entry}, nil
}

// StockHistory returns the newest ledger entries across all items, served
// from the history cache when possible.
func (s *Service) StockHistory(ctx context.Context, limit int) ([]domain.StockLogEntry, error) {
	limit = normalizeLimit(limit)

	// The version is taken before the store read so a page loaded across a
	// concurrent ledger write is discarded instead of cached.
	cached, version, ok, cacheErr := s.history.Get(ctx, limit)
	if cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Msg("stock history cache read failed")
	} else if ok {
		return cached, nil
	}

	entries, err := s.repo.ListStockLogs(ctx, "", limit)
	if err != nil {
		return nil, err
	}
	if cacheErr == nil {
		if err := s.history.Set(ctx, limit, version, entries, s.historyTTL); err != nil {
			s.logger.Warn().Err(err).Msg("stock history cache write failed")
		}
	}
	return entries, nil
}

// ItemStockHistory returns the newest ledger entries for one item.
func (s *Service) ItemStockHistory(ctx context.Context, itemID string, limit int) ([]domain.StockLogEntry, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, invalidInput("item id is required")
	}
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListStockLogs(ctx, itemID, normalizeLimit(limit))
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.ListInventory(ctx)
}

// CreateInventoryItem stores a catalogue item with its BOM edges. A non-zero
// opening stock is booked through the ledger as an IN movement.
func (s *Service) CreateInventoryItem(ctx context.Context, req domain.InventoryCreateRequest) (domain.InventoryItem, error) {
	item := domain.InventoryItem{
		ID:             xid.New("item"),
		Name:           strings.TrimSpace(req.Name),
		SKU:            strings.TrimSpace(req.Barcode),
		Kind:           strings.ToUpper(defaultString(req.Kind, domain.KindProduct)),
		IsComposite:    req.IsComposite,
		Price:          req.Price,
		SaleDeductQty:  decimal.NewFromInt(1),
		SaleDeductUnit: strings.TrimSpace(req.SaleDeductUnit),
		Units: domain.UnitHierarchy{
			Level1: defaultString(req.UnitLevel1, "unit"),
			Level2: strings.TrimSpace(req.UnitLevel2),
			Ratio2: req.UnitRatio2,
			Level3: strings.TrimSpace(req.UnitLevel3),
			Ratio3: req.UnitRatio3,
		},
		CreatedAt: s.now().UTC(),
	}

	if item.Name == "" {
		return domain.InventoryItem{}, invalidInput("name is required")
	}
	if item.Kind != domain.KindProduct && item.Kind != domain.KindService {
		return domain.InventoryItem{}, invalidInput("unknown kind %q", item.Kind)
	}
	if item.Price.IsNegative() || req.Stock.IsNegative() {
		return domain.InventoryItem{}, invalidInput("price and stock must not be negative")
	}
	if item.Units.Ratio2 < 0 || item.Units.Ratio3 < 0 {
		return domain.InventoryItem{}, invalidInput("unit ratios must not be negative")
	}
	if req.SaleDeductQty != nil {
		if !req.SaleDeductQty.IsPositive() {
			return domain.InventoryItem{}, invalidInput("sale_deduct_qty must be greater than zero")
		}
		item.SaleDeductQty = *req.SaleDeductQty
	}

	if len(req.Ingredients) > 0 && !req.IsComposite {
		return domain.InventoryItem{}, invalidInput("ingredients require is_composite")
	}
	for _, in := range req.Ingredients {
		item.Ingredients = append(item.Ingredients, domain.Ingredient{
			ParentID: item.ID,
			ChildID:  strings.TrimSpace(in.ID),
			Quantity: in.QtyNeeded,
		})
	}
	if err := bom.Validate(item.ID, item.Ingredients); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("%w: %w", store.ErrInvalidInput, err)
	}

	var opening *domain.StockLogEntry
	err := s.repo.InTx(ctx, func(tx store.Tx) error {
		opening = nil
		if err := tx.CreateItem(ctx, item); err != nil {
			return err
		}
		if !req.Stock.IsPositive() {
			return nil
		}
		entry, err := ledger.Apply(ctx, tx, item.ID, req.Stock, domain.StockActionIn, initialStockNote)
		if err != nil {
			return err
		}
		opening = &entry
		return nil
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}

	if opening != nil {
		s.afterCommit(ctx, true, events.StockMoved, stockEvent(*opening))
	}

	created, err := s.repo.GetItem(ctx, item.ID)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return *created, nil
}

func stockEvent(entry domain.StockLogEntry) domain.StockEvent {
	return domain.StockEvent{
		EntryID:  entry.ID,
		ItemID:   entry.ItemID,
		Action:   entry.Action,
		Delta:    entry.Delta,
		Quantity: entry.Quantity,
	}
}
