package bom

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestResolveCompositeDeductsEachIngredient(t *testing.T) {
	grooming := domain.InventoryItem{ID: "srv-grooming", IsComposite: true}
	edges := []domain.Ingredient{
		{ParentID: "srv-grooming", ChildID: "raw-shampoo", Quantity: dec("50")},
		{ParentID: "srv-grooming", ChildID: "raw-towel", Quantity: dec("1")},
	}

	got := Resolve(grooming, edges, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 deductions, got %d", len(got))
	}
	if got[0].ItemID != "raw-shampoo" || !got[0].Quantity.Equal(dec("100")) {
		t.Fatalf("expected shampoo 100, got %s %s", got[0].ItemID, got[0].Quantity)
	}
	if got[1].ItemID != "raw-towel" || !got[1].Quantity.Equal(dec("2")) {
		t.Fatalf("expected towel 2, got %s %s", got[1].ItemID, got[1].Quantity)
	}
}

func TestResolvePlainItemUsesSaleDeductQty(t *testing.T) {
	item := domain.InventoryItem{ID: "food", SaleDeductQty: dec("0.5")}
	got := Resolve(item, nil, 3)
	if len(got) != 1 || got[0].ItemID != "food" || !got[0].Quantity.Equal(dec("1.5")) {
		t.Fatalf("unexpected deductions %+v", got)
	}
}

func TestResolveDefaultsSaleDeductQtyToOne(t *testing.T) {
	item := domain.InventoryItem{ID: "collar"}
	got := Resolve(item, nil, 1)
	if len(got) != 1 || !got[0].Quantity.Equal(dec("1")) {
		t.Fatalf("expected a single deduction of 1, got %+v", got)
	}
}

func TestResolveCompositeWithoutEdgesFallsBackToSelf(t *testing.T) {
	item := domain.InventoryItem{ID: "srv-empty", IsComposite: true, SaleDeductQty: dec("2")}
	got := Resolve(item, nil, 2)
	if len(got) != 1 || got[0].ItemID != "srv-empty" || !got[0].Quantity.Equal(dec("4")) {
		t.Fatalf("unexpected deductions %+v", got)
	}
}

func TestResolveIsOneLevelOnly(t *testing.T) {
	// kit -> bundle (composite) -> shampoo; only bundle is deducted.
	kit := domain.InventoryItem{ID: "kit", IsComposite: true}
	edges := []domain.Ingredient{{ParentID: "kit", ChildID: "bundle", Quantity: dec("1")}}

	got := Resolve(kit, edges, 1)
	if len(got) != 1 || got[0].ItemID != "bundle" {
		t.Fatalf("expected only the immediate child, got %+v", got)
	}
}

func TestRounded(t *testing.T) {
	cases := map[string]int64{
		"100":  100,
		"0.4":  0,
		"0.5":  1,
		"2.49": 2,
		"-7.5": 8,
	}
	for in, want := range cases {
		if got := Rounded(dec(in)); got != want {
			t.Fatalf("Rounded(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestValidateRejectsBadEdges(t *testing.T) {
	tests := []struct {
		name  string
		edges []domain.Ingredient
		want  error
	}{
		{"self loop", []domain.Ingredient{{ChildID: "p", Quantity: dec("1")}}, ErrSelfLoop},
		{"zero qty", []domain.Ingredient{{ChildID: "c", Quantity: dec("0")}}, ErrInvalidQuantity},
		{"missing child", []domain.Ingredient{{Quantity: dec("1")}}, ErrMissingChild},
		{"duplicate", []domain.Ingredient{{ChildID: "c", Quantity: dec("1")}, {ChildID: "c", Quantity: dec("2")}}, ErrDuplicateChild},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate("p", tc.edges); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if err := Validate("p", []domain.Ingredient{{ChildID: "c", Quantity: dec("0.25")}}); err != nil {
		t.Fatalf("expected valid edge, got %v", err)
	}
}

func TestTouchedKeepsFirstSeenOrder(t *testing.T) {
	ids := Touched([]Deduction{{ItemID: "b"}, {ItemID: "a"}, {ItemID: "b"}})
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Fatalf("unexpected ids %v", ids)
	}
}
