package importreceipt

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

const dayLayout = "2006-01-02"

// Get returns a receipt and its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	return sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) (Detail, error) {
		var r models.ReceiptImport
		err := tx.NewSelect().Model(&r).Where("id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			return Detail{}, receipts.ScanNotFound(err, "receipt")
		}
		return loadDetail(ctx, tx, r)
	})
}

// GetByNumber looks a receipt up by its printed number, e.g. from the
// barcode on a printout.
func (s *Service) GetByNumber(ctx context.Context, number string) (Detail, error) {
	return sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) (Detail, error) {
		var r models.ReceiptImport
		err := tx.NewSelect().Model(&r).Where("receipt_number = ?", strings.TrimSpace(number)).Limit(1).Scan(ctx)
		if err != nil {
			return Detail{}, receipts.ScanNotFound(err, "receipt")
		}
		return loadDetail(ctx, tx, r)
	})
}

func loadDetail(ctx context.Context, tx bun.IDB, r models.ReceiptImport) (Detail, error) {
	items, err := receipts.LoadItems(ctx, tx, r.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("load items: %w", err)
	}
	return Detail{Receipt: r, Items: toItemViews(items)}, nil
}

// List returns one page of receipts, newest first.
func (s *Service) List(ctx context.Context, f Filter) (ListResult, error) {
	page := f.Page
	if page.Limit == 0 {
		page = pagination.New(1, 0)
	}
	return sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) (ListResult, error) {
		rows := make([]models.ReceiptImport, 0)
		q := tx.NewSelect().Model(&rows)
		if kw := strings.TrimSpace(f.Keyword); kw != "" {
			like := "%" + kw + "%"
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("receipt_number LIKE ?", like).
					WhereOr("note LIKE ?", like).
					WhereOr("warehouse LIKE ?", like)
			})
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.ImportDate != nil {
			start := startOfDay(*f.ImportDate)
			q = q.Where("import_date >= ?", start).Where("import_date < ?", start.AddDate(0, 0, 1))
		}
		total, err := q.OrderExpr("created_at DESC").
			Limit(page.Limit).
			Offset(page.Offset).
			ScanAndCount(ctx)
		if err != nil {
			return ListResult{}, fmt.Errorf("list receipts: %w", err)
		}
		return ListResult{Receipts: rows, Metadata: page.Metadata(total)}, nil
	})
}

// CompletedTotalsByDay sums total_product of COMPLETED receipts per creation
// day in [start, end]. Days without receipts are reported as zero.
func (s *Service) CompletedTotalsByDay(ctx context.Context, start, end time.Time) ([]DayTotal, error) {
	start, end = startOfDay(start), startOfDay(end)
	if end.Before(start) {
		return nil, &receipts.ValidationError{Err: fmt.Errorf("endDate %s is before startDate %s", end.Format(dayLayout), start.Format(dayLayout))}
	}

	type dayRow struct {
		Day   string `bun:"day"`
		Total int64  `bun:"total"`
	}
	rows, err := sqlite.Read(ctx, s.db, func(ctx context.Context, tx bun.Tx) ([]dayRow, error) {
		var rows []dayRow
		err := tx.NewSelect().
			TableExpr("receipt_imports").
			ColumnExpr("DATE(created_at) AS day").
			ColumnExpr("COALESCE(SUM(total_product), 0) AS total").
			Where("status = ?", models.ImportCompleted).
			Where("created_at >= ?", start).
			Where("created_at < ?", end.AddDate(0, 0, 1)).
			GroupExpr("DATE(created_at)").
			Scan(ctx, &rows)
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("completed totals: %w", err)
	}

	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Total
	}
	out := make([]DayTotal, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		out = append(out, DayTotal{X: key, Y: byDay[key]})
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
