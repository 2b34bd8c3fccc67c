package checkreceipt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/ledger"
	"stockreceipter/infrastructure/metrics"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/infrastructure/sqlite"
	"stockreceipter/models"
)

const entityType = "receipt_check"

// Service runs check-receipt commands and queries.
type Service struct {
	db      *sqlite.DB
	audit   *audit.Service
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(db *sqlite.DB, auditSvc *audit.Service, l *ledger.Ledger, m *metrics.Metrics, log *slog.Logger) *Service {
	if auditSvc == nil {
		auditSvc = audit.NewService()
	}
	if l == nil {
		l = ledger.New(m)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, audit: auditSvc, ledger: l, metrics: m, log: log}
}

// Create stores a check header and its counted items.
func (s *Service) Create(ctx context.Context, actor sessioncontext.Actor, in CreateInput) (uuid.UUID, error) {
	if err := receipts.Validate(in); err != nil {
		return uuid.Nil, err
	}
	status := in.Status
	if status == "" {
		status = models.CheckPending
	}

	now := s.audit.Now()
	r := &models.ReceiptCheck{
		ID:            uuid.New(),
		ReceiptNumber: receipts.NewReceiptNumber(receipts.CheckPrefix, now),
		Periodic:      in.Periodic,
		SupplierID:    in.SupplierID,
		Date:          in.Date,
		Note:          in.Note,
		Status:        status,
		CheckerID:     in.CheckerID,
		UserCreated:   actor.ID,
		ChangeLogs:    models.ChangeLog{},
		ActivityLogs:  models.ActivityLog{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := receipts.BuildItems(r.ID, in.Items, now)

	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(r).Exec(ctx); err != nil {
			return fmt.Errorf("insert check: %w", err)
		}
		if err := receipts.InsertItems(ctx, tx, items); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityCheckCreated,
			fmt.Sprintf("created check receipt %s", r.ReceiptNumber), r.ID); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, actor.ID, "receipt_check.create", entityType, r.ID.String(), nil, r)
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.metrics.ReceiptCreated("check")
	return r.ID, nil
}

// Update applies a partial update through the generic status path. Each
// touched field appends an activity entry; BALANCED is rejected.
func (s *Service) Update(ctx context.Context, actor sessioncontext.Actor, id uuid.UUID, in UpdateInput) (uuid.UUID, error) {
	if err := receipts.Validate(in); err != nil {
		return uuid.Nil, err
	}

	var transition receipts.CheckTransition
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		r, err := loadCheck(ctx, tx, id)
		if err != nil {
			return err
		}
		before := r
		now := s.audit.Now()

		fields := applyHeader(&r, in)

		if len(in.Items) > 0 {
			if _, err := receipts.ReplaceItems(ctx, tx, r.ID, in.Items, now); err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
			fields = append(fields, "items")
		}

		if in.Status != nil && *in.Status != r.Status {
			transition, err = receipts.TransitionCheck(&r, *in.Status, actor.Name, now)
			if err != nil {
				return err
			}
			transition.Apply(&r)
			fields = append(fields, "status")
		}

		r.ActivityLogs = r.ActivityLogs.Append(audit.FieldActivities(actor.Name, fields, now)...)
		r.UpdatedAt = now
		res, err := tx.NewUpdate().Model(&r).WherePK().ExcludeColumn("id", "receipt_number", "user_created", "created_at").Exec(ctx)
		if err := receipts.RequireAffected(res, err, "check receipt"); err != nil {
			return err
		}

		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityCheckUpdated,
			fmt.Sprintf("updated check receipt %s", r.ReceiptNumber), r.ID); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, actor.ID, "receipt_check.update", entityType, r.ID.String(), before, r)
	})
	if err != nil {
		return uuid.Nil, err
	}
	if transition.Changed {
		s.metrics.StatusTransition("check", string(transition.From), string(transition.Status))
	}
	return id, nil
}

// Balance closes the audit: stock of every counted product is overwritten
// with its ActualInventory and the receipt moves to BALANCED. When in.Items
// is empty the stored items are used.
func (s *Service) Balance(ctx context.Context, actor sessioncontext.Actor, id uuid.UUID, in BalanceInput) error {
	if err := receipts.Validate(in); err != nil {
		return err
	}

	var transition receipts.CheckTransition
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		r, err := loadCheck(ctx, tx, id)
		if err != nil {
			return err
		}
		before := r
		now := s.audit.Now()

		transition, err = receipts.BalanceCheck(&r, actor.Name, now)
		if err != nil {
			return err
		}

		var items []models.ReceiptItem
		if len(in.Items) > 0 {
			items, err = receipts.ReplaceItems(ctx, tx, r.ID, in.Items, now)
		} else {
			items, err = receipts.LoadItems(ctx, tx, r.ID)
		}
		if err != nil {
			return fmt.Errorf("balance items: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("check receipt %s: %w", r.ReceiptNumber, receipts.ErrNoItems)
		}

		stockBefore, err := currentStock(ctx, tx, items)
		if err != nil {
			return err
		}
		counts := make([]ledger.StockCount, 0, len(items))
		for _, it := range items {
			counts = append(counts, ledger.StockCount{ProductID: it.ProductID, Inventory: it.ActualInventory})
		}
		if err := s.ledger.Overwrite(ctx, tx, counts); err != nil {
			return err
		}
		for _, it := range items {
			if err := s.ledger.WriteInventoryLog(ctx, tx, &models.InventoryLog{
				ProductID:   it.ProductID,
				ReceiptID:   &r.ID,
				UserID:      actor.ID,
				StockBefore: stockBefore[it.ProductID],
				StockAfter:  it.ActualInventory,
				CostPrice:   it.CostPrice,
				Reason:      "balance " + r.ReceiptNumber,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}

		transition.Apply(&r)
		r.UpdatedAt = now
		res, err := tx.NewUpdate().Model(&r).
			Column("status", "change_logs", "activity_logs", "updated_at").
			WherePK().
			Exec(ctx)
		if err := receipts.RequireAffected(res, err, "check receipt"); err != nil {
			return err
		}

		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityCheckBalanced,
			fmt.Sprintf("balanced check receipt %s (%d products)", r.ReceiptNumber, len(items)), r.ID); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, actor.ID, "receipt_check.balance", entityType, r.ID.String(), before, r)
	})
	if err != nil {
		return err
	}
	s.metrics.StatusTransition("check", string(transition.From), string(transition.Status))
	return nil
}

// CountItem adds one unit to the counted stock of a product on an open check.
func (s *Service) CountItem(ctx context.Context, actor sessioncontext.Actor, id uuid.UUID, productCode int64) (ItemView, error) {
	return sqlite.Write(ctx, s.db, func(ctx context.Context, tx bun.Tx) (ItemView, error) {
		r, err := loadCheck(ctx, tx, id)
		if err != nil {
			return ItemView{}, err
		}
		if receipts.CheckClosed(r.Status) {
			return ItemView{}, fmt.Errorf("%w: check receipt is %s", receipts.ErrTerminalStatus, r.Status)
		}

		res, err := tx.NewUpdate().
			Model((*models.ReceiptItem)(nil)).
			Set("actual_inventory = actual_inventory + 1").
			Set("updated_at = ?", s.audit.Now()).
			Where("receipt_id = ?", id).
			Where("product_code = ?", productCode).
			Exec(ctx)
		if err := receipts.RequireAffected(res, err, "item"); err != nil {
			return ItemView{}, err
		}

		var it models.ReceiptItem
		err = tx.NewSelect().Model(&it).
			Where("receipt_id = ?", id).
			Where("product_code = ?", productCode).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return ItemView{}, receipts.ScanNotFound(err, "item")
		}
		s.log.Debug("counted item",
			slog.String("receipt_id", id.String()),
			slog.Int64("product_code", productCode),
			slog.String("user", actor.Name))
		return toItemViews([]models.ReceiptItem{it})[0], nil
	})
}

// Delete removes a check receipt and all its items in one transaction.
func (s *Service) Delete(ctx context.Context, actor sessioncontext.Actor, id uuid.UUID) ([]uuid.UUID, error) {
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		r, err := loadCheck(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.ReceiptCheck)(nil)).Where("id = ?", id).Exec(ctx)
		if err := receipts.RequireAffected(res, err, "check receipt"); err != nil {
			return err
		}
		if _, err := receipts.DeleteItems(ctx, tx, id); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityCheckDeleted,
			fmt.Sprintf("deleted check receipt %s", r.ReceiptNumber), id); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, actor.ID, "receipt_check.delete", entityType, id.String(), r, nil)
	})
	if err != nil {
		return nil, err
	}
	return []uuid.UUID{id}, nil
}

func loadCheck(ctx context.Context, tx bun.IDB, id uuid.UUID) (models.ReceiptCheck, error) {
	var r models.ReceiptCheck
	err := tx.NewSelect().Model(&r).Where("id = ?", id).Limit(1).Scan(ctx)
	return r, receipts.ScanNotFound(err, "check receipt")
}

func currentStock(ctx context.Context, tx bun.IDB, items []models.ReceiptItem) (map[uuid.UUID]int64, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	err := tx.NewSelect().Model(&products).
		Column("id", "inventory").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	out := make(map[uuid.UUID]int64, len(products))
	for _, p := range products {
		out[p.ID] = p.Inventory
	}
	return out, nil
}

// applyHeader copies the non-nil fields of in onto r and returns the
// activity-log field names they map to.
func applyHeader(r *models.ReceiptCheck, in UpdateInput) []string {
	var fields []string
	if in.Periodic != nil {
		r.Periodic = *in.Periodic
		fields = append(fields, "periodic")
	}
	if in.Note != nil {
		r.Note = *in.Note
		fields = append(fields, "note")
	}
	if in.SupplierID != nil {
		r.SupplierID = in.SupplierID
		fields = append(fields, "supplier")
	}
	if in.Date != nil {
		r.Date = in.Date
		fields = append(fields, "date")
	}
	if in.CheckerID != nil {
		r.CheckerID = in.CheckerID
		fields = append(fields, "checker")
	}
	return fields
}
