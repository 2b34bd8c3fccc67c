package checkreceipt

import (
	"time"

	"github.com/google/uuid"

	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/models"
)

// CreateInput is the body of a create request. Items carry the system
// stock snapshot in Inventory and the counted stock in ActualInventory.
type CreateInput struct {
	Periodic   string               `json:"periodic" validate:"max=100"`
	SupplierID *uuid.UUID           `json:"supplierId"`
	Date       *time.Time           `json:"date"`
	Note       string               `json:"note" validate:"max=1000"`
	Status     models.CheckStatus   `json:"status" validate:"omitempty,oneof=PENDING CHECKING"`
	CheckerID  *uuid.UUID           `json:"checkerId"`
	Items      []receipts.ItemInput `json:"items" validate:"dive"`
}

// UpdateInput carries a partial update. Every non-nil field adds one
// activity-log entry.
type UpdateInput struct {
	Periodic   *string              `json:"periodic" validate:"omitempty,max=100"`
	SupplierID *uuid.UUID           `json:"supplierId"`
	Date       *time.Time           `json:"date"`
	Note       *string              `json:"note" validate:"omitempty,max=1000"`
	Status     *models.CheckStatus  `json:"status"`
	CheckerID  *uuid.UUID           `json:"checkerId"`
	Items      []receipts.ItemInput `json:"items" validate:"dive"`
}

// BalanceInput optionally replaces the counted items before balancing.
type BalanceInput struct {
	Items []receipts.ItemInput `json:"items" validate:"dive"`
}

// Filter narrows List. Date matches a whole day; StartDate and EndDate
// bound the check date inclusively.
type Filter struct {
	Keyword   string
	Status    models.CheckStatus
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
	Page      pagination.Page
}

// ItemView is an item with its display code and discrepancy.
type ItemView struct {
	models.ReceiptItem
	Code string `json:"code"`
	receipts.Discrepancy
}

type Detail struct {
	Receipt models.ReceiptCheck   `json:"receipt"`
	Items   []ItemView            `json:"items"`
	Summary receipts.CheckSummary `json:"summary"`
}

// ListEntry is one row of a check listing with a preview of its items.
type ListEntry struct {
	models.ReceiptCheck
	Summary    receipts.CheckSummary `json:"summary"`
	Items      []ItemView            `json:"items"`
	TotalItems int                   `json:"totalItems"`
}

type ListResult struct {
	Receipts []ListEntry         `json:"data"`
	Metadata pagination.Metadata `json:"metadata"`
}

const previewItems = 2

func toItemViews(items []models.ReceiptItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, ItemView{
			ReceiptItem: it,
			Code:        receipts.FormatProductCode(it.ProductCode),
			Discrepancy: receipts.ItemDiscrepancy(it),
		})
	}
	return out
}
