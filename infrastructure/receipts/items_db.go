package receipts

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"stockreceipter/models"
)

// ItemInput is one line supplied by a create or update request.
type ItemInput struct {
	ProductID       uuid.UUID       `json:"productId" validate:"required"`
	ProductCode     int64           `json:"productCode" validate:"gte=0"`
	ProductName     string          `json:"productName" validate:"required"`
	Quantity        int64           `json:"quantity" validate:"gte=0"`
	Inventory       int64           `json:"inventory"`
	ActualInventory int64           `json:"actualInventory"`
	Discount        decimal.Decimal `json:"discount"`
	CostPrice       decimal.Decimal `json:"costPrice"`
}

// BuildItems turns inputs into rows owned by receiptID.
func BuildItems(receiptID uuid.UUID, inputs []ItemInput, at time.Time) []models.ReceiptItem {
	items := make([]models.ReceiptItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.ReceiptItem{
			ID:              uuid.New(),
			ReceiptID:       receiptID,
			ProductID:       in.ProductID,
			ProductCode:     in.ProductCode,
			ProductName:     in.ProductName,
			Quantity:        in.Quantity,
			Inventory:       in.Inventory,
			ActualInventory: in.ActualInventory,
			Discount:        in.Discount,
			CostPrice:       in.CostPrice,
			CreatedAt:       at,
			UpdatedAt:       at,
		})
	}
	return items
}

// InsertItems bulk-inserts items. A duplicate (receipt_id, product_code)
// surfaces as the driver's constraint error.
func InsertItems(ctx context.Context, tx bun.IDB, items []models.ReceiptItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&items).Exec(ctx)
	return err
}

// DeleteItems removes every item of a receipt.
func DeleteItems(ctx context.Context, tx bun.IDB, receiptID uuid.UUID) (sql.Result, error) {
	return tx.NewDelete().
		Model((*models.ReceiptItem)(nil)).
		Where("receipt_id = ?", receiptID).
		Exec(ctx)
}

// ReplaceItems deletes all items of receiptID and inserts the new set.
func ReplaceItems(ctx context.Context, tx bun.IDB, receiptID uuid.UUID, inputs []ItemInput, at time.Time) ([]models.ReceiptItem, error) {
	if _, err := DeleteItems(ctx, tx, receiptID); err != nil {
		return nil, err
	}
	items := BuildItems(receiptID, inputs, at)
	if err := InsertItems(ctx, tx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// LoadItems returns a receipt's items ordered by product code.
func LoadItems(ctx context.Context, tx bun.IDB, receiptID uuid.UUID) ([]models.ReceiptItem, error) {
	items := make([]models.ReceiptItem, 0)
	err := tx.NewSelect().
		Model(&items).
		Where("receipt_id = ?", receiptID).
		OrderExpr("product_code ASC").
		Scan(ctx)
	return items, err
}

// LoadItemsFor returns items for several receipts keyed by receipt id.
func LoadItemsFor(ctx context.Context, tx bun.IDB, receiptIDs []uuid.UUID) (map[uuid.UUID][]models.ReceiptItem, error) {
	out := make(map[uuid.UUID][]models.ReceiptItem, len(receiptIDs))
	if len(receiptIDs) == 0 {
		return out, nil
	}
	var items []models.ReceiptItem
	err := tx.NewSelect().
		Model(&items).
		Where("receipt_id IN (?)", bun.In(receiptIDs)).
		OrderExpr("receipt_id ASC, product_code ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ReceiptID] = append(out[it.ReceiptID], it)
	}
	return out, nil
}
