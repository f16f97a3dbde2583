// Package bom expands a sold item into the stock deductions it causes.
//
// Expansion is exactly one level deep: when a composite item lists another
// composite item as an ingredient, the ingredient's own stock is deducted and
// its sub-ingredients are left untouched.
package bom

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
)

var (
	ErrSelfLoop        = errors.New("ingredient cannot reference its parent item")
	ErrInvalidQuantity = errors.New("ingredient quantity must be positive")
	ErrMissingChild    = errors.New("ingredient item id is required")
	ErrDuplicateChild  = errors.New("ingredient listed more than once")
)

// Deduction is the amount of stock one item loses for a sale line.
type Deduction struct {
	ItemID   string
	Quantity decimal.Decimal
}

// Resolve returns the deductions for selling qty units of item. ingredients
// are item's BOM edges; order is preserved.
func Resolve(item domain.InventoryItem, ingredients []domain.Ingredient, qty int) []Deduction {
	sold := decimal.NewFromInt(int64(qty))

	if item.IsComposite && len(ingredients) > 0 {
		out := make([]Deduction, 0, len(ingredients))
		for _, edge := range ingredients {
			out = append(out, Deduction{
				ItemID:   edge.ChildID,
				Quantity: edge.Quantity.Mul(sold),
			})
		}
		return out
	}

	return []Deduction{{
		ItemID:   item.ID,
		Quantity: EffectiveDeductQty(item).Mul(sold),
	}}
}

// EffectiveDeductQty is the per-unit self deduction, defaulting to 1.
func EffectiveDeductQty(item domain.InventoryItem) decimal.Decimal {
	if item.SaleDeductQty.IsPositive() {
		return item.SaleDeductQty
	}
	return decimal.NewFromInt(1)
}

// Rounded is the magnitude recorded in the stock log for a deduction.
func Rounded(qty decimal.Decimal) int64 {
	return qty.Abs().Round(0).IntPart()
}

// Validate checks the BOM edges of parentID before they are stored.
func Validate(parentID string, ingredients []domain.Ingredient) error {
	seen := make(map[string]struct{}, len(ingredients))
	for _, edge := range ingredients {
		if edge.ChildID == "" {
			return ErrMissingChild
		}
		if parentID != "" && edge.ChildID == parentID {
			return ErrSelfLoop
		}
		if !edge.Quantity.IsPositive() {
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, edge.ChildID)
		}
		if _, dup := seen[edge.ChildID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateChild, edge.ChildID)
		}
		seen[edge.ChildID] = struct{}{}
	}
	return nil
}

// Touched returns the distinct item ids a set of deductions affects, in
// first-seen order.
func Touched(deductions []Deduction) []string {
	seen := make(map[string]struct{}, len(deductions))
	ids := make([]string, 0, len(deductions))
	for _, d := range deductions {
		if _, ok := seen[d.ItemID]; ok {
			continue
		}
		seen[d.ItemID] = struct{}{}
		ids = append(ids, d.ItemID)
	}
	return ids
}
