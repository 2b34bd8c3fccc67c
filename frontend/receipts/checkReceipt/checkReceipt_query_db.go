package checkreceipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/infrastructure/sqlite"
	"stockreceipter/models"
)

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	return sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) (Detail, error) {
		r, err := loadCheck(ctx, tx, id)
		if err != nil {
			return Detail{}, err
		}
		return loadDetail(ctx, tx, r)
	})
}

func (s *Service) GetByNumber(ctx context.Context, number string) (Detail, error) {
	return sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) (Detail, error) {
		var r models.ReceiptCheck
		err := tx.NewSelect().Model(&r).Where("receipt_number = ?", strings.TrimSpace(number)).Limit(1).Scan(ctx)
		if err != nil {
			return Detail{}, receipts.ScanNotFound(err, "check receipt")
		}
		return loadDetail(ctx, tx, r)
	})
}

func loadDetail(ctx context.Context, tx bun.IDB, r models.ReceiptCheck) (Detail, error) {
	items, err := receipts.LoadItems(ctx, tx, r.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("load items: %w", err)
	}
	return Detail{Receipt: r, Items: toItemViews(items), Summary: receipts.SumDiscrepancies(items)}, nil
}

// List returns a page of check receipts, each with its discrepancy summary
// and the first items as a preview.
func (s *Service) List(ctx context.Context, f Filter) (ListResult, error) {
	page := f.Page
	if page.Limit == 0 {
		page = pagination.New(1, 0)
	}
	return sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) (ListResult, error) {
		rows := make([]models.ReceiptCheck, 0)
		q := tx.NewSelect().Model(&rows)
		if kw := strings.TrimSpace(f.Keyword); kw != "" {
			like := "%" + kw + "%"
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("receipt_number LIKE ?", like).WhereOr("note LIKE ?", like)
			})
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Date != nil {
			day := startOfDay(*f.Date)
			q = q.Where("date >= ?", day).Where("date < ?", day.AddDate(0, 0, 1))
		}
		if f.StartDate != nil {
			q = q.Where("date >= ?", startOfDay(*f.StartDate))
		}
		if f.EndDate != nil {
			q = q.Where("date < ?", startOfDay(*f.EndDate).AddDate(0, 0, 1))
		}
		total, err := q.OrderExpr("created_at DESC").
			Limit(page.Limit).
			Offset(page.Offset).
			ScanAndCount(ctx)
		if err != nil {
			return ListResult{}, fmt.Errorf("list checks: %w", err)
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		itemsByReceipt, err := receipts.LoadItemsFor(ctx, tx, ids)
		if err != nil {
			return ListResult{}, fmt.Errorf("list check items: %w", err)
		}

		entries := make([]ListEntry, 0, len(rows))
		for _, r := range rows {
			items := itemsByReceipt[r.ID]
			preview := items
			if len(preview) > previewItems {
				preview = preview[:previewItems]
			}
			entries = append(entries, ListEntry{
				ReceiptCheck: r,
				Summary:      receipts.SumDiscrepancies(items),
				Items:        toItemViews(preview),
				TotalItems:   len(items),
			})
		}
		return ListResult{Receipts: entries, Metadata: page.Metadata(total)}, nil
	})
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
