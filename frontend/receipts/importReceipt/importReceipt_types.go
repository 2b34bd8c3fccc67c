package importreceipt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/models"
)

// CreateInput is the body of a create request. Header totals are derived
// from Items.
type CreateInput struct {
	Note        string               `json:"note" validate:"max=1000"`
	SupplierID  *uuid.UUID           `json:"supplierId"`
	Warehouse   string               `json:"warehouse" validate:"max=200"`
	PaymentDate *time.Time           `json:"paymentDate"`
	ImportDate  *time.Time           `json:"importDate"`
	Status      models.ImportStatus  `json:"status" validate:"omitempty,oneof=DRAFT PROCESSING WAITING"`
	Items       []receipts.ItemInput `json:"items" validate:"dive"`
}

// UpdateInput carries a partial update. Nil fields are left unchanged and
// an empty Items leaves the stored items untouched.
type UpdateInput struct {
	Note        *string              `json:"note" validate:"omitempty,max=1000"`
	SupplierID  *uuid.UUID           `json:"supplierId"`
	Warehouse   *string              `json:"warehouse" validate:"omitempty,max=200"`
	PaymentDate *time.Time           `json:"paymentDate"`
	ImportDate  *time.Time           `json:"importDate"`
	Status      *models.ImportStatus `json:"status"`
	Items       []receipts.ItemInput `json:"items" validate:"dive"`
}

// ScanInput is one barcode scan.
type ScanInput struct {
	Code string `json:"code" validate:"required"`
}

// Filter narrows List. ImportDate matches a whole calendar day.
type Filter struct {
	Keyword    string
	Status     models.ImportStatus
	ImportDate *time.Time
	Page       pagination.Page
}

// ItemView is an item with its display code.
type ItemView struct {
	models.ReceiptItem
	Code string `json:"code"`
}

// Detail is a receipt with its items.
type Detail struct {
	Receipt models.ReceiptImport `json:"receipt"`
	Items   []ItemView           `json:"items"`
}

// ListResult is a page of receipts.
type ListResult struct {
	Receipts []models.ReceiptImport `json:"data"`
	Metadata pagination.Metadata    `json:"metadata"`
}

// DayTotal is the number of products imported by completed receipts on one day.
type DayTotal struct {
	X string `json:"x"`
	Y int64  `json:"y"`
}

// ScanResult identifies the receipt a scan landed on.
type ScanResult struct {
	ReceiptID     uuid.UUID       `json:"id"`
	ReceiptNumber string          `json:"receiptNumber"`
	Created       bool            `json:"created"`
	Item          ItemView        `json:"item"`
	Stock         int64           `json:"stock"`
	CostPrice     decimal.Decimal `json:"costPrice"`
}

func toItemViews(items []models.ReceiptItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, ItemView{ReceiptItem: it, Code: receipts.FormatProductCode(it.ProductCode)})
	}
	return out
}
