package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindProduct = "PRODUCT"
	KindService = "SERVICE"
)

const (
	StockActionIn   = "IN"
	StockActionOut  = "OUT"
	StockActionSale = "SALE"
)

const (
	BookingStatusConfirmed  = "Confirmed"
	BookingStatusCheckedIn  = "CheckedIn"
	BookingStatusInProgress = "InProgress"
	BookingStatusCompleted  = "Completed"
	BookingStatusCancelled  = "Cancelled"
	BookingStatusNoShow     = "NoShow"
)

const (
	ResourceTypeStaff = "Staff"
	ResourceTypeRoom  = "Room"
	ResourceTypeCage  = "Cage"
)

// UnitHierarchy describes how an item is counted. It is informational only;
// stock is always kept in Level1 units.
type UnitHierarchy struct {
	Level1 string `json:"unit_level1"`
	Level2 string `json:"unit_level2,omitempty"`
	Ratio2 int    `json:"unit_ratio_2,omitempty"`
	Level3 string `json:"unit_level3,omitempty"`
	Ratio3 int    `json:"unit_ratio_3,omitempty"`
}

type InventoryItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku,omitempty"`
	Kind           string          `json:"kind"`
	IsComposite    bool            `json:"is_composite"`
	Price          decimal.Decimal `json:"price"`
	Stock          decimal.Decimal `json:"stock"`
	SaleDeductQty  decimal.Decimal `json:"sale_deduct_qty"`
	SaleDeductUnit string          `json:"sale_deduct_unit,omitempty"`
	Units          UnitHierarchy   `json:"units"`
	Ingredients    []Ingredient    `json:"ingredients,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Ingredient is a BOM edge: selling one unit of ParentID consumes Quantity
// units of ChildID.
type Ingredient struct {
	ParentID  string          `json:"parent_id"`
	ChildID   string          `json:"id"`
	ChildName string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"qty_needed"`
}

type StockLogEntry struct {
	ID       string `json:"id"`
	ItemID   string `json:"product_id"`
	ItemName string `json:"product_name,omitempty"`
	Action   string `json:"type"`
	// Quantity is the rounded magnitude shown to operators.
	Quantity int64 `json:"qty"`
	// Delta is the exact signed change applied to the item's stock.
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"note"`
	CreatedAt time.Time       `json:"date"`
}

type Transaction struct {
	ID           string            `json:"id"`
	Total        decimal.Decimal   `json:"total"`
	PaymentType  string            `json:"payment_type"`
	ReceiptType  string            `json:"receipt_type"`
	TaxInfo      json.RawMessage   `json:"tax_info,omitempty"`
	CustomerID   string            `json:"customer_id,omitempty"`
	CustomerName string            `json:"customer_name,omitempty"`
	CreatedAt    time.Time         `json:"timestamp"`
	Items        []TransactionItem `json:"items"`
}

type TransactionItem struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ItemID        string          `json:"inventory_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"price"`
	PetID         string          `json:"pet_id,omitempty"`
	PetName       string          `json:"pet_name,omitempty"`
	StaffID       string          `json:"staff_id,omitempty"`
	RoomID        string          `json:"room_id,omitempty"`
}

type Booking struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	PetID       string     `json:"pet_id"`
	ServiceID   string     `json:"service_id"`
	StaffID     string     `json:"staff_id,omitempty"`
	RoomID      string     `json:"room_id,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	ActualStart *time.Time `json:"actual_start,omitempty"`
	ActualEnd   *time.Time `json:"actual_end,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type OrderLine struct {
	ID      string           `json:"id"`
	Qty     int              `json:"qty"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	Name    string           `json:"name,omitempty"`
	PetID   string           `json:"petId,omitempty"`
	PetName string           `json:"petName,omitempty"`
	StaffID string           `json:"staffId,omitempty"`
	RoomID  string           `json:"roomId,omitempty"`
}

type OrderRequest struct {
	Items        []OrderLine      `json:"items"`
	Total        *decimal.Decimal `json:"total,omitempty"`
	CustomerID   string           `json:"customerId,omitempty"`
	CustomerName string           `json:"customerName,omitempty"`
	PaymentType  string           `json:"paymentType"`
	ReceiptType  string           `json:"receiptType"`
	TaxInfo      json.RawMessage  `json:"taxInfo,omitempty"`
}

// StockDeduction reports the net stock change a sale caused on one item.
type StockDeduction struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Logged   int64           `json:"logged"`
}

type OrderResponse struct {
	Success     bool             `json:"success"`
	Transaction Transaction      `json:"transaction"`
	Deductions  []StockDeduction `json:"deductions"`
}

type CustomerSummary struct {
	TotalSpent  decimal.Decimal `json:"total_spent"`
	TotalOrders int             `json:"total_orders"`
}

// CustomerHistory is a customer's purchase record, newest transaction first.
type CustomerHistory struct {
	Success      bool            `json:"success"`
	CustomerID   string          `json:"customer_id"`
	Summary      CustomerSummary `json:"summary"`
	Transactions []Transaction   `json:"transactions"`
}

type BookingCreateRequest struct {
	CustomerID string    `json:"customerId"`
	PetID      string    `json:"petId"`
	ServiceID  string    `json:"serviceId"`
	StaffID    string    `json:"staffId,omitempty"`
	RoomID     string    `json:"roomId,omitempty"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Status     string    `json:"status,omitempty"`
}

type BookingUpdateRequest struct {
	Status          string     `json:"status"`
	ActualStartTime *time.Time `json:"actualStartTime,omitempty"`
	ActualEndTime   *time.Time `json:"actualEndTime,omitempty"`
}

type BookingResponse struct {
	Success bool    `json:"success"`
	Booking Booking `json:"booking"`
}

type StockMoveRequest struct {
	ProductID string          `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
	Note      string          `json:"note"`
}

type StockMoveResponse struct {
	Success bool          `json:"success"`
	Entry   StockLogEntry `json:"entry"`
}

type IngredientInput struct {
	ID        string          `json:"id"`
	QtyNeeded decimal.Decimal `json:"qty_needed"`
}

type InventoryCreateRequest struct {
	Name           string            `json:"name"`
	Barcode        string            `json:"barcode,omitempty"`
	Kind           string            `json:"kind,omitempty"`
	Price          decimal.Decimal   `json:"price"`
	Stock          decimal.Decimal   `json:"stock"`
	UnitLevel1     string            `json:"unit_level1,omitempty"`
	UnitLevel2     string            `json:"unit_level2,omitempty"`
	UnitRatio2     int               `json:"unit_ratio_2,omitempty"`
	UnitLevel3     string            `json:"unit_level3,omitempty"`
	UnitRatio3     int               `json:"unit_ratio_3,omitempty"`
	SaleDeductQty  *decimal.Decimal  `json:"sale_deduct_qty,omitempty"`
	SaleDeductUnit string            `json:"sale_deduct_unit,omitempty"`
	IsComposite    bool              `json:"is_composite"`
	Ingredients    []IngredientInput `json:"ingredients,omitempty"`
}

type InventoryResponse struct {
	Success bool          `json:"success"`
	Item    InventoryItem `json:"item"`
}

// BookingFilter narrows a booking listing to an optional time window.
type BookingFilter struct {
	From *time.Time
	To   *time.Time
}

// TransactionEvent is published once a checkout has committed.
type TransactionEvent struct {
	TransactionID string           `json:"transaction_id"`
	Total         decimal.Decimal  `json:"total"`
	PaymentType   string           `json:"payment_type"`
	ItemCount     int              `json:"item_count"`
	Deductions    []StockDeduction `json:"deductions"`
	CreatedAt     time.Time        `json:"created_at"`
}

type BookingEvent struct {
	BookingID string    `json:"booking_id"`
	StaffID   string    `json:"staff_id,omitempty"`
	RoomID    string    `json:"room_id,omitempty"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type StockEvent struct {
	EntryID  string          `json:"entry_id"`
	ItemID   string          `json:"item_id"`
	Action   string          `json:"action"`
	Delta    decimal.Decimal `json:"delta"`
	Quantity int64           `json:"quantity"`
}
