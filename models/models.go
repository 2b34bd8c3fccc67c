package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ImportStatus is the lifecycle state of an import receipt.
type ImportStatus string

const (
	ImportDraft      ImportStatus = "DRAFT"
	ImportProcessing ImportStatus = "PROCESSING"
	ImportWaiting    ImportStatus = "WAITING"
	ImportCompleted  ImportStatus = "COMPLETED"
	ImportCancelled  ImportStatus = "CANCELLED"
)

// CheckStatus is the lifecycle state of a check receipt.
type CheckStatus string

const (
	CheckPending   CheckStatus = "PENDING"
	CheckChecking  CheckStatus = "CHECKING"
	CheckBalanced  CheckStatus = "BALANCED"
	CheckCancelled CheckStatus = "CANCELLED"
)

// User activity types.
const (
	ActivityImportCreated = "RECEIPT_IMPORT_CREATED"
	ActivityImportUpdated = "RECEIPT_IMPORT_UPDATED"
	ActivityImportDeleted = "RECEIPT_IMPORT_DELETED"
	ActivityCheckCreated  = "RECEIPT_CHECK_CREATED"
	ActivityCheckUpdated  = "RECEIPT_CHECK_UPDATED"
	ActivityCheckBalanced = "RECEIPT_CHECK_BALANCED"
	ActivityCheckDeleted  = "RECEIPT_CHECK_DELETED"
)

// Product is the stock master; Inventory is stock on hand.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID           uuid.UUID       `bun:"id,pk" json:"id"`
	ProductCode  int64           `bun:"product_code,notnull,unique" json:"productCode"`
	ProductName  string          `bun:"product_name,notnull" json:"productName"`
	CostPrice    decimal.Decimal `bun:"cost_price,notnull" json:"costPrice"`
	SellingPrice decimal.Decimal `bun:"selling_price,notnull" json:"sellingPrice"`
	Inventory    int64           `bun:"inventory,notnull,default:0" json:"inventory"`
	Unit         string          `bun:"unit" json:"unit"`
	Status       string          `bun:"status,notnull" json:"status"`
	CreatedAt    time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// ReceiptImport is a goods-received document.
type ReceiptImport struct {
	bun.BaseModel `bun:"table:receipt_imports,alias:ri"`

	ID            uuid.UUID       `bun:"id,pk" json:"id"`
	ReceiptNumber string          `bun:"receipt_number,notnull,unique" json:"receiptNumber"`
	Note          string          `bun:"note" json:"note"`
	Quantity      int64           `bun:"quantity,notnull" json:"quantity"`
	TotalProduct  int64           `bun:"total_product,notnull" json:"totalProduct"`
	TotalAmount   decimal.Decimal `bun:"total_amount,notnull" json:"totalAmount"`
	SupplierID    *uuid.UUID      `bun:"supplier_id" json:"supplierId,omitempty"`
	Warehouse     string          `bun:"warehouse" json:"warehouse"`
	PaymentDate   *time.Time      `bun:"payment_date" json:"paymentDate,omitempty"`
	ImportDate    *time.Time      `bun:"import_date" json:"importDate,omitempty"`
	Status        ImportStatus    `bun:"status,notnull" json:"status"`
	UserCreated   uuid.UUID       `bun:"user_created,notnull" json:"userCreated"`
	ChangeLogs    ChangeLog       `bun:"change_logs,notnull" json:"changeLogs"`
	CreatedAt     time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// ReceiptCheck is a stock-audit document.
type ReceiptCheck struct {
	bun.BaseModel `bun:"table:receipt_checks,alias:rc"`

	ID            uuid.UUID   `bun:"id,pk" json:"id"`
	ReceiptNumber string      `bun:"receipt_number,notnull,unique" json:"receiptNumber"`
	Periodic      string      `bun:"periodic" json:"periodic"`
	SupplierID    *uuid.UUID  `bun:"supplier_id" json:"supplierId,omitempty"`
	Date          *time.Time  `bun:"date" json:"date,omitempty"`
	Note          string      `bun:"note" json:"note"`
	Status        CheckStatus `bun:"status,notnull" json:"status"`
	CheckerID     *uuid.UUID  `bun:"checker_id" json:"checkerId,omitempty"`
	UserCreated   uuid.UUID   `bun:"user_created,notnull" json:"userCreated"`
	ChangeLogs    ChangeLog   `bun:"change_logs,notnull" json:"changeLogs"`
	ActivityLogs  ActivityLog `bun:"activity_logs,notnull" json:"activityLogs"`
	CreatedAt     time.Time   `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time   `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// ReceiptItem is a line on either receipt kind.
//
// Inventory is the system stock snapshot taken when the line was recorded;
// ActualInventory is the counted (or expected post-import) stock.
type ReceiptItem struct {
	bun.BaseModel `bun:"table:receipt_items,alias:rit"`

	ID              uuid.UUID       `bun:"id,pk" json:"id"`
	ReceiptID       uuid.UUID       `bun:"receipt_id,notnull" json:"receiptId"`
	ProductID       uuid.UUID       `bun:"product_id,notnull" json:"productId"`
	ProductCode     int64           `bun:"product_code,notnull" json:"productCode"`
	ProductName     string          `bun:"product_name,notnull" json:"productName"`
	Quantity        int64           `bun:"quantity,notnull" json:"quantity"`
	Inventory       int64           `bun:"inventory,notnull" json:"inventory"`
	ActualInventory int64           `bun:"actual_inventory,notnull" json:"actualInventory"`
	Discount        decimal.Decimal `bun:"discount,notnull" json:"discount"`
	CostPrice       decimal.Decimal `bun:"cost_price,notnull" json:"costPrice"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// InventoryLog records a single stock movement of a product.
type InventoryLog struct {
	bun.BaseModel `bun:"table:inventory_logs,alias:il"`

	ID          int64           `bun:"id,pk,autoincrement" json:"id"`
	ProductID   uuid.UUID       `bun:"product_id,notnull" json:"productId"`
	ReceiptID   *uuid.UUID      `bun:"receipt_id" json:"receiptId,omitempty"`
	UserID      uuid.UUID       `bun:"user_id,notnull" json:"userId"`
	StockBefore int64           `bun:"stock_before,notnull" json:"stockBefore"`
	StockAfter  int64           `bun:"stock_after,notnull" json:"stockAfter"`
	CostPrice   decimal.Decimal `bun:"cost_price,notnull" json:"costPrice"`
	Reason      string          `bun:"reason,notnull" json:"reason"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// UserActivity is the per-user feed of receipt actions.
type UserActivity struct {
	bun.BaseModel `bun:"table:user_activities,alias:ua"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      uuid.UUID `bun:"user_id,notnull" json:"userId"`
	Type        string    `bun:"type,notnull" json:"type"`
	Description string    `bun:"description,notnull" json:"description"`
	ReferenceID uuid.UUID `bun:"reference_id,notnull" json:"referenceId"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     uuid.UUID `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
