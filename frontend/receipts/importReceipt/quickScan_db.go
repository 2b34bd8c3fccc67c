package importreceipt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/infrastructure/scanlock"
	"stockreceipter/models"
)

const upsertScannedItemSQL = `
INSERT INTO receipt_items (
    id, receipt_id, product_id, product_code, product_name,
    quantity, inventory, actual_inventory, discount, cost_price,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, 1, ?, ?, '0', ?, ?, ?)
ON CONFLICT (receipt_id, product_code) DO UPDATE SET
    quantity = receipt_items.quantity + 1,
    actual_inventory = receipt_items.actual_inventory + 1,
    updated_at = excluded.updated_at`

// QuickScan adds one unit of the scanned product to the actor's PROCESSING
// receipt, creating the receipt on the first scan, and increments stock.
// The whole scan commits or rolls back as one unit.
func (s *Service) QuickScan(ctx context.Context, actor sessioncontext.Actor, code string) (ScanResult, error) {
	if err := receipts.Validate(ScanInput{Code: code}); err != nil {
		return ScanResult{}, err
	}

	release, err := s.locker.Acquire(ctx, actor.ID.String())
	if errors.Is(err, scanlock.ErrBusy) {
		return ScanResult{}, receipts.ErrScanInProgress
	}
	if err != nil {
		return ScanResult{}, err
	}
	defer release()

	var out ScanResult
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		now := s.audit.Now()

		r, created, err := s.activeReceipt(ctx, tx, actor, now)
		if err != nil {
			return err
		}

		p, err := receipts.ResolveProduct(ctx, tx, code)
		if err != nil {
			return err
		}

		// The upsert, the stock increment and the log have no data
		// dependency on each other.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			_, err := tx.ExecContext(gctx, upsertScannedItemSQL,
				uuid.New(), r.ID, p.ID, p.ProductCode, p.ProductName,
				p.Inventory, p.Inventory+1, p.CostPrice, now, now)
			if err != nil {
				return fmt.Errorf("upsert scanned item: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			return s.ledger.Increment(gctx, tx, p.ID, 1)
		})
		g.Go(func() error {
			return s.ledger.WriteInventoryLog(gctx, tx, &models.InventoryLog{
				ProductID:   p.ID,
				ReceiptID:   &r.ID,
				UserID:      actor.ID,
				StockBefore: p.Inventory,
				StockAfter:  p.Inventory + 1,
				CostPrice:   p.CostPrice,
				Reason:      "quick scan " + r.ReceiptNumber,
				CreatedAt:   now,
			})
		})
		if err := g.Wait(); err != nil {
			return err
		}

		items, err := receipts.LoadItems(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		receipts.Summarize(items).Apply(&r)
		r.UpdatedAt = now
		res, err := tx.NewUpdate().Model(&r).
			Column("quantity", "total_product", "total_amount", "updated_at").
			WherePK().
			Exec(ctx)
		if err := receipts.RequireAffected(res, err, "receipt"); err != nil {
			return err
		}

		out = ScanResult{
			ReceiptID:     r.ID,
			ReceiptNumber: r.ReceiptNumber,
			Created:       created,
			Stock:         p.Inventory + 1,
			CostPrice:     p.CostPrice,
		}
		for _, it := range items {
			if it.ProductCode == p.ProductCode {
				out.Item = ItemView{ReceiptItem: it, Code: receipts.FormatProductCode(it.ProductCode)}
			}
		}
		return nil
	})
	if err != nil {
		return ScanResult{}, err
	}

	s.metrics.QuickScan()
	if out.Created {
		s.metrics.ReceiptCreated("import")
	}
	s.log.Debug("quick scan",
		slog.String("receipt_id", out.ReceiptID.String()),
		slog.String("code", code),
		slog.Int64("quantity", out.Item.Quantity))
	return out, nil
}

// activeReceipt returns the actor's PROCESSING receipt, creating one when
// none exists. The partial unique index on (user_created) WHERE PROCESSING
// rejects a second concurrent creation.
func (s *Service) activeReceipt(ctx context.Context, tx bun.Tx, actor sessioncontext.Actor, now time.Time) (models.ReceiptImport, bool, error) {
	var r models.ReceiptImport
	err := tx.NewSelect().Model(&r).
		Where("user_created = ?", actor.ID).
		Where("status = ?", models.ImportProcessing).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return r, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return r, false, fmt.Errorf("find processing receipt: %w", err)
	}

	r = models.ReceiptImport{
		ID:            uuid.New(),
		ReceiptNumber: receipts.NewReceiptNumber(receipts.ImportPrefix, now),
		Status:        models.ImportProcessing,
		UserCreated:   actor.ID,
		TotalAmount:   decimal.Zero,
		ChangeLogs:    models.ChangeLog{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := tx.NewInsert().Model(&r).Exec(ctx); err != nil {
		return r, false, fmt.Errorf("create processing receipt: %w", err)
	}
	if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityImportCreated,
		fmt.Sprintf("started quick-scan receipt %s", r.ReceiptNumber), r.ID); err != nil {
		return r, false, err
	}
	return r, true, nil
}
