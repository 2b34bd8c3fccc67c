package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	"stockreceipter/infrastructure/metrics"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/models"
)

// StockCount is an absolute stock value for one product.
type StockCount struct {
	ProductID uuid.UUID
	Inventory int64
}

// Ledger owns every write to products.inventory. All methods run on the
// caller's transaction.
type Ledger struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(m *metrics.Metrics) *Ledger {
	return &Ledger{metrics: m, now: time.Now}
}

// Increment adds delta to a product's stock with a single UPDATE so
// concurrent writers never lose an update.
func (l *Ledger) Increment(ctx context.Context, tx bun.IDB, productID uuid.UUID, delta int64) error {
	res, err := tx.NewUpdate().
		Model((*models.Product)(nil)).
		Set("inventory = inventory + ?", delta).
		Set("updated_at = ?", l.now().UTC()).
		Where("id = ?", productID).
		Exec(ctx)
	if err := receipts.RequireAffected(res, err, "product"); err != nil {
		return fmt.Errorf("increment stock %s: %w", productID, err)
	}
	l.metrics.StockWrites("increment", 1)
	return nil
}

// Overwrite sets each product's stock to its counted value, one UPDATE per
// product issued concurrently. Any failure fails the whole batch; the caller
// rolls back.
func (l *Ledger) Overwrite(ctx context.Context, tx bun.IDB, counts []StockCount) error {
	if len(counts) == 0 {
		return nil
	}
	now := l.now().UTC()
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			res, err := tx.NewUpdate().
				Model((*models.Product)(nil)).
				Set("inventory = ?", c.Inventory).
				Set("updated_at = ?", now).
				Where("id = ?", c.ProductID).
				Exec(gctx)
			if err := receipts.RequireAffected(res, err, "product"); err != nil {
				return fmt.Errorf("overwrite stock %s: %w", c.ProductID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	l.metrics.StockWrites("overwrite", len(counts))
	return nil
}

// WriteInventoryLog records one stock movement.
func (l *Ledger) WriteInventoryLog(ctx context.Context, tx bun.IDB, entry *models.InventoryLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now().UTC()
	}
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("write inventory log: %w", err)
	}
	return nil
}
