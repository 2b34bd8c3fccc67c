package importreceipt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/ledger"
	"stockreceipter/infrastructure/metrics"
	"stockreceipter/infrastructure/notify"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/infrastructure/scanlock"
	"stockreceipter/infrastructure/sqlite"
	"stockreceipter/models"
)

const entityType = "receipt_import"

// Service runs import-receipt commands and queries.
type Service struct {
	db       *sqlite.DB
	audit    *audit.Service
	ledger   *ledger.Ledger
	notifier notify.Notifier
	locker   scanlock.Locker
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// Deps are the collaborators of Service. Only DB is required.
type Deps struct {
	DB       *sqlite.DB
	Audit    *audit.Service
	Ledger   *ledger.Ledger
	Notifier notify.Notifier
	Locker   scanlock.Locker
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		db:       d.DB,
		audit:    d.Audit,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		locker:   d.Locker,
		metrics:  d.Metrics,
		log:      d.Log,
	}
	if s.audit == nil {
		s.audit = audit.NewService()
	}
	if s.ledger == nil {
		s.ledger = ledger.New(d.Metrics)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.log)
	}
	if s.locker == nil {
		s.locker = scanlock.Noop{}
	}
	return s
}

// Create stores a header and its items. Totals are computed from the items.
func (s *Service) Create(ctx context.Context, actor sessioncontext.Actor, in CreateInput) (uuid.UUID, error) {
	if err := receipts.Validate(in); err != nil {
		return uuid.Nil, err
	}
	status := in.Status
	if status == "" {
		status = models.ImportDraft
	}
	if status == models.ImportWaiting && len(in.Items) == 0 {
		return uuid.Nil, receipts.ErrNoItems
	}

	now := s.audit.Now()
	r := &models.ReceiptImport{
		ID:            uuid.New(),
		ReceiptNumber: receipts.NewReceiptNumber(receipts.ImportPrefix, now),
		Note:          in.Note,
		SupplierID:    in.SupplierID,
		Warehouse:     in.Warehouse,
		PaymentDate:   in.PaymentDate,
		ImportDate:    in.ImportDate,
		Status:        status,
		UserCreated:   actor.ID,
		ChangeLogs:    models.ChangeLog{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := receipts.BuildItems(r.ID, in.Items, now)
	receipts.Summarize(items).Apply(r)

	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(r).Exec(ctx); err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}
		if err := receipts.InsertItems(ctx, tx, items); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityImportCreated,
			fmt.Sprintf("created import receipt %s", r.ReceiptNumber), r.ID); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, actor.ID, "receipt_import.create", entityType, r.ID.String(), nil, r)
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.metrics.ReceiptCreated("import")
	return r.ID, nil
}

// Update applies a partial header update, replaces items when given, and
// runs a status transition when Status differs from the stored one.
//
// Items are replaced before the transition so a move to WAITING totals the
// final item set.
func (s *Service) Update(ctx context.Context, actor sessioncontext.Actor, id uuid.UUID, in UpdateInput) (uuid.UUID, error) {
	if err := receipts.Validate(in); err != nil {
		return uuid.Nil, err
	}

	var transition receipts.ImportTransition
	var updated models.ReceiptImport
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		r, err := loadForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		before := r
		now := s.audit.Now()

		applyHeader(&r, in)

		if len(in.Items) > 0 {
			items, err := receipts.ReplaceItems(ctx, tx, r.ID, in.Items, now)
			if err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
			receipts.Summarize(items).Apply(&r)
		}

		if in.Status != nil && *in.Status != r.Status {
			transition, err = receipts.TransitionImport(ctx, tx, &r, *in.Status, actor.Name, now)
			if err != nil {
				return err
			}
			transition.Apply(&r)
		}

		r.UpdatedAt = now
		res, err := tx.NewUpdate().Model(&r).WherePK().ExcludeColumn("id", "receipt_number", "user_created", "created_at").Exec(ctx)
		if err := receipts.RequireAffected(res, err, "receipt"); err != nil {
			return err
		}

		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityImportUpdated,
			fmt.Sprintf("updated import receipt %s", r.ReceiptNumber), r.ID); err != nil {
			return err
		}
		updated = r
		return s.audit.Write(ctx, tx, actor.ID, "receipt_import.update", entityType, r.ID.String(), before, r)
	})
	if err != nil {
		return uuid.Nil, err
	}

	if transition.Changed {
		s.metrics.StatusTransition("import", string(transition.From), string(transition.Status))
	}
	if transition.Notify {
		s.notifyCompleted(ctx, actor, updated)
	}
	return id, nil
}

// Delete removes a receipt and all its items in one transaction.
func (s *Service) Delete(ctx context.Context, actor sessioncontext.Actor, id uuid.UUID) ([]uuid.UUID, error) {
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		r, err := loadForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.ReceiptImport)(nil)).Where("id = ?", id).Exec(ctx)
		if err := receipts.RequireAffected(res, err, "receipt"); err != nil {
			return err
		}
		if _, err := receipts.DeleteItems(ctx, tx, id); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := s.audit.RecordActivity(ctx, tx, actor.ID, models.ActivityImportDeleted,
			fmt.Sprintf("deleted import receipt %s", r.ReceiptNumber), id); err != nil {
			return err
		}
		return s.audit.Write(ctx, tx, actor.ID, "receipt_import.delete", entityType, id.String(), r, nil)
	})
	if err != nil {
		return nil, err
	}
	return []uuid.UUID{id}, nil
}

func (s *Service) notifyCompleted(ctx context.Context, actor sessioncontext.Actor, r models.ReceiptImport) {
	n := notify.Notification{
		Type:        "RECEIPT_IMPORT_COMPLETED",
		Title:       "Import receipt completed",
		Body:        fmt.Sprintf("%s completed import receipt %s (%d items)", actor.Name, r.ReceiptNumber, r.Quantity),
		ReferenceID: r.ID.String(),
		UserID:      r.UserCreated.String(),
		Data:        map[string]string{"receiptNumber": r.ReceiptNumber},
		CreatedAt:   time.Now().UTC(),
	}
	// The receipt is already committed; a delivery failure is only logged.
	if err := s.notifier.Send(ctx, n); err != nil {
		s.log.Error("send completion notification failed",
			slog.String("receipt_id", r.ID.String()),
			slog.Any("err", err))
	}
}

func loadForUpdate(ctx context.Context, tx bun.IDB, id uuid.UUID) (models.ReceiptImport, error) {
	var r models.ReceiptImport
	err := tx.NewSelect().Model(&r).Where("id = ?", id).Limit(1).Scan(ctx)
	return r, receipts.ScanNotFound(err, "receipt")
}

func applyHeader(r *models.ReceiptImport, in UpdateInput) {
	if in.Note != nil {
		r.Note = *in.Note
	}
	if in.SupplierID != nil {
		r.SupplierID = in.SupplierID
	}
	if in.Warehouse != nil {
		r.Warehouse = *in.Warehouse
	}
	if in.PaymentDate != nil {
		r.PaymentDate = in.PaymentDate
	}
	if in.ImportDate != nil {
		r.ImportDate = in.ImportDate
	}
}
