package sqlstore

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"petcare/backend/internal/domain"
)

const itemColumns = `id, name, COALESCE(sku, '') AS sku, kind, is_composite, price, stock,
	sale_deduct_qty, sale_deduct_unit, unit_level1, unit_level2, unit_ratio_2, unit_level3, unit_ratio_3, created_at`

type itemRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	SKU            string          `db:"sku"`
	Kind           string          `db:"kind"`
	IsComposite    bool            `db:"is_composite"`
	Price          decimal.Decimal `db:"price"`
	Stock          decimal.Decimal `db:"stock"`
	SaleDeductQty  decimal.Decimal `db:"sale_deduct_qty"`
	SaleDeductUnit string          `db:"sale_deduct_unit"`
	UnitLevel1     string          `db:"unit_level1"`
	UnitLevel2     string          `db:"unit_level2"`
	UnitRatio2     int             `db:"unit_ratio_2"`
	UnitLevel3     string          `db:"unit_level3"`
	UnitRatio3     int             `db:"unit_ratio_3"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r itemRow) toDomain() domain.InventoryItem {
	return domain.InventoryItem{
		ID:             r.ID,
		Name:           r.Name,
		SKU:            r.SKU,
		Kind:           r.Kind,
		IsComposite:    r.IsComposite,
		Price:          r.Price,
		Stock:          r.Stock,
		SaleDeductQty:  r.SaleDeductQty,
		SaleDeductUnit: r.SaleDeductUnit,
		Units: domain.UnitHierarchy{
			Level1: r.UnitLevel1,
			Level2: r.UnitLevel2,
			Ratio2: r.UnitRatio2,
			Level3: r.UnitLevel3,
			Ratio3: r.UnitRatio3,
		},
		CreatedAt: r.CreatedAt.UTC(),
	}
}

const ingredientQuery = `
	SELECT g.parent_id, g.child_id, COALESCE(c.name, '') AS child_name, g.qty_needed
	FROM ingredients g
	LEFT JOIN inventory_items c ON c.id = g.child_id`

type ingredientRow struct {
	ParentID  string          `db:"parent_id"`
	ChildID   string          `db:"child_id"`
	ChildName string          `db:"child_name"`
	Quantity  decimal.Decimal `db:"qty_needed"`
}

func groupIngredients(rows []ingredientRow) map[string][]domain.Ingredient {
	out := make(map[string][]domain.Ingredient)
	for _, row := range rows {
		out[row.ParentID] = append(out[row.ParentID], domain.Ingredient{
			ParentID:  row.ParentID,
			ChildID:   row.ChildID,
			ChildName: row.ChildName,
			Quantity:  row.Quantity,
		})
	}
	return out
}

type stockLogRow struct {
	ID        string          `db:"id"`
	ItemID    string          `db:"item_id"`
	ItemName  string          `db:"item_name"`
	Action    string          `db:"action"`
	Quantity  int64           `db:"qty"`
	Delta     decimal.Decimal `db:"delta"`
	Reason    string          `db:"reason"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r stockLogRow) toDomain() domain.StockLogEntry {
	return domain.StockLogEntry{
		ID:        r.ID,
		ItemID:    r.ItemID,
		ItemName:  r.ItemName,
		Action:    r.Action,
		Quantity:  r.Quantity,
		Delta:     r.Delta,
		Reason:    r.Reason,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

const transactionColumns = `id, total, payment_type, receipt_type, tax_info,
	COALESCE(customer_id, '') AS customer_id, customer_name, created_at`

type transactionRow struct {
	ID           string          `db:"id"`
	Total        decimal.Decimal `db:"total"`
	PaymentType  string          `db:"payment_type"`
	ReceiptType  string          `db:"receipt_type"`
	TaxInfo      sql.NullString  `db:"tax_info"`
	CustomerID   string          `db:"customer_id"`
	CustomerName string          `db:"customer_name"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r transactionRow) toDomain() domain.Transaction {
	tx := domain.Transaction{
		ID:           r.ID,
		Total:        r.Total,
		PaymentType:  r.PaymentType,
		ReceiptType:  r.ReceiptType,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		CreatedAt:    r.CreatedAt.UTC(),
		Items:        []domain.TransactionItem{},
	}
	if r.TaxInfo.Valid && r.TaxInfo.String != "" {
		tx.TaxInfo = []byte(r.TaxInfo.String)
	}
	return tx
}

const transactionItemColumns = `id, transaction_id, item_id, name, quantity, unit_price,
	COALESCE(pet_id, '') AS pet_id, pet_name, COALESCE(staff_id, '') AS staff_id, COALESCE(room_id, '') AS room_id`

type transactionItemRow struct {
	ID            string          `db:"id"`
	TransactionID string          `db:"transaction_id"`
	ItemID        string          `db:"item_id"`
	Name          string          `db:"name"`
	Quantity      int             `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	PetID         string          `db:"pet_id"`
	PetName       string          `db:"pet_name"`
	StaffID       string          `db:"staff_id"`
	RoomID        string          `db:"room_id"`
}

func (r transactionItemRow) toDomain() domain.TransactionItem {
	return domain.TransactionItem{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		ItemID:        r.ItemID,
		Name:          r.Name,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		PetID:         r.PetID,
		PetName:       r.PetName,
		StaffID:       r.StaffID,
		RoomID:        r.RoomID,
	}
}

const bookingColumns = `id, customer_id, pet_id, service_id, COALESCE(staff_id, '') AS staff_id,
	COALESCE(room_id, '') AS room_id, start_time, end_time, status, actual_start, actual_end, created_at`

type bookingRow struct {
	ID          string       `db:"id"`
	CustomerID  string       `db:"customer_id"`
	PetID       string       `db:"pet_id"`
	ServiceID   string       `db:"service_id"`
	StaffID     string       `db:"staff_id"`
	RoomID      string       `db:"room_id"`
	StartTime   time.Time    `db:"start_time"`
	EndTime     time.Time    `db:"end_time"`
	Status      string       `db:"status"`
	ActualStart sql.NullTime `db:"actual_start"`
	ActualEnd   sql.NullTime `db:"actual_end"`
	CreatedAt   time.Time    `db:"created_at"`
}

func (r bookingRow) toDomain() domain.Booking {
	b := domain.Booking{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		PetID:      r.PetID,
		ServiceID:  r.ServiceID,
		StaffID:    r.StaffID,
		RoomID:     r.RoomID,
		StartTime:  r.StartTime.UTC(),
		EndTime:    r.EndTime.UTC(),
		Status:     r.Status,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.ActualStart.Valid {
		at := r.ActualStart.Time.UTC()
		b.ActualStart = &at
	}
	if r.ActualEnd.Valid {
		at := r.ActualEnd.Time.UTC()
		b.ActualEnd = &at
	}
	return b
}

func bookingsFromRows(rows []bookingRow) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return val.UTC()
}
