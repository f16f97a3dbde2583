package store

import (
	"time"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
)

// IDs of the demo catalogue returned by SeedCatalog.
const (
	SeedShampooID  = "item-shampoo"
	SeedGroomingID = "item-grooming"
	SeedDogFoodID  = "item-dogfood"
	SeedVetStaffID = "res-vet-b"
	SeedGroomerID  = "res-groomer-a"
	SeedExamRoomID = "res-exam-1"
	SeedCageID     = "res-cage-a"

	SeedStockNote = "initial stock"
)

// Catalog is demo data loaded into an empty store. Items are ordered so every
// ingredient appears before the item that consumes it; Stock is the opening
// balance to be recorded as an IN movement.
type Catalog struct {
	Items     []domain.InventoryItem
	Resources []domain.Resource
}

// SeedCatalog returns a small pet-shop catalogue: shampoo sold by the ml, a
// grooming service that uses 50 ml per session, dog food, two staff members,
// an exam room and a cage.
func SeedCatalog(now time.Time) Catalog {
	one := decimal.NewFromInt(1)
	return Catalog{
		Items: []domain.InventoryItem{
			{
				ID: SeedShampooID, Name: "Dog Shampoo (ml)", SKU: "RAW-001", Kind: domain.KindProduct,
				Price: decimal.RequireFromString("0.5"), Stock: decimal.NewFromInt(5000), SaleDeductQty: one,
				Units: domain.UnitHierarchy{Level1: "ml"}, CreatedAt: now,
			},
			{
				ID: SeedGroomingID, Name: "Bath & Trim (S)", SKU: "SRV-001", Kind: domain.KindService,
				IsComposite: true, Price: decimal.NewFromInt(350), SaleDeductQty: one,
				Units: domain.UnitHierarchy{Level1: "session"}, CreatedAt: now,
				Ingredients: []domain.Ingredient{
					{ParentID: SeedGroomingID, ChildID: SeedShampooID, Quantity: decimal.NewFromInt(50)},
				},
			},
			{
				ID: SeedDogFoodID, Name: "Dog Food 1kg", SKU: "FOOD-001", Kind: domain.KindProduct,
				Price: decimal.NewFromInt(120), Stock: decimal.NewFromInt(40), SaleDeductQty: one,
				Units: domain.UnitHierarchy{Level1: "bag", Level2: "box", Ratio2: 10}, CreatedAt: now,
			},
		},
		Resources: []domain.Resource{
			{ID: SeedVetStaffID, Name: "Dr. B", Type: domain.ResourceTypeStaff},
			{ID: SeedGroomerID, Name: "Groomer A", Type: domain.ResourceTypeStaff},
			{ID: SeedExamRoomID, Name: "Exam Room 1", Type: domain.ResourceTypeRoom},
			{ID: SeedCageID, Name: "Cage A", Type: domain.ResourceTypeCage},
		},
	}
}

// OpeningEntry is the IN movement that records a seeded item's opening stock.
func OpeningEntry(item domain.InventoryItem) domain.StockLogEntry {
	return domain.StockLogEntry{
		ID:        "log-seed-" + item.ID,
		ItemID:    item.ID,
		Action:    domain.StockActionIn,
		Quantity:  item.Stock.Abs().Round(0).IntPart(),
		Delta:     item.Stock,
		Reason:    SeedStockNote,
		CreatedAt: item.CreatedAt,
	}
}
