package importreceipt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/notify"
	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/infrastructure/sqlite"
	"stockreceipter/infrastructure/sqlite/sqlitetest"
	"stockreceipter/models"
)

var operator = sessioncontext.Actor{ID: uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7"), Name: "Lan"}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func newTestService(t *testing.T, deps Deps) (*Service, *sqlite.DB) {
	t.Helper()
	db := sqlitetest.Open(t)
	deps.DB = db
	return NewService(deps), db
}

func item(p uuid.UUID, code, qty, cost int64) receipts.ItemInput {
	return receipts.ItemInput{
		ProductID:   p,
		ProductCode: code,
		ProductName: "Product",
		Quantity:    qty,
		CostPrice:   decimal.NewFromInt(cost),
	}
}

func status(s models.ImportStatus) *models.ImportStatus { return &s }

func mustGet(t *testing.T, svc *Service, id uuid.UUID) Detail {
	t.Helper()
	d, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return d
}

func TestCreateThenWaitingComputesTotals(t *testing.T) {
	svc, db := newTestService(t, Deps{})
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1, CostPrice: 100})
	p2 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 2, CostPrice: 50})
	ctx := context.Background()

	id, err := svc.Create(ctx, operator, CreateInput{Items: []receipts.ItemInput{
		item(p1, 1, 5, 100),
		item(p2, 2, 2, 50),
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d := mustGet(t, svc, id); d.Receipt.Status != models.ImportDraft {
		t.Fatalf("expected DRAFT default, got %s", d.Receipt.Status)
	}

	if _, err := svc.Update(ctx, operator, id, UpdateInput{Status: status(models.ImportWaiting)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	d := mustGet(t, svc, id)
	if d.Receipt.Quantity != 7 || d.Receipt.TotalProduct != 2 || !d.Receipt.TotalAmount.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("unexpected totals q=%d n=%d amount=%s", d.Receipt.Quantity, d.Receipt.TotalProduct, d.Receipt.TotalAmount)
	}
	if len(d.Receipt.ChangeLogs) != 1 || d.Receipt.ChangeLogs[0].NewStatus != "WAITING" || d.Receipt.ChangeLogs[0].User != "Lan" {
		t.Fatalf("unexpected change log %+v", d.Receipt.ChangeLogs)
	}
	if len(d.Items) != 2 || d.Items[0].Code != "NK00001" {
		t.Fatalf("unexpected items %+v", d.Items)
	}
}

func TestChangeLogGrowsByOnePerTransition(t *testing.T) {
	svc, db := newTestService(t, Deps{})
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1})
	ctx := context.Background()
	id, err := svc.Create(ctx, operator, CreateInput{Items: []receipts.ItemInput{item(p1, 1, 1, 10)}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	path := []models.ImportStatus{
		models.ImportProcessing,
		models.ImportDraft,
		models.ImportWaiting,
		models.ImportCompleted,
	}
	var prev models.ChangeLog
	for i, next := range path {
		if _, err := svc.Update(ctx, operator, id, UpdateInput{Status: status(next)}); err != nil {
			t.Fatalf("step %d -> %s: %v", i, next, err)
		}
		logs := mustGet(t, svc, id).Receipt.ChangeLogs
		if len(logs) != i+1 {
			t.Fatalf("step %d: expected %d entries, got %d", i, i+1, len(logs))
		}
		for j := range prev {
			if logs[j].OldStatus != prev[j].OldStatus || logs[j].NewStatus != prev[j].NewStatus {
				t.Fatalf("step %d: entry %d changed from %+v to %+v", i, j, prev[j], logs[j])
			}
		}
		if logs[i].NewStatus != string(next) {
			t.Fatalf("step %d: last entry %+v", i, logs[i])
		}
		prev = logs
	}

	if _, err := svc.Update(ctx, operator, id, UpdateInput{Status: status(models.ImportDraft)}); !errors.Is(err, receipts.ErrTerminalStatus) {
		t.Fatalf("expected terminal error, got %v", err)
	}
}

func TestWaitingWithoutItemsLeavesReceiptUnchanged(t *testing.T) {
	svc, _ := newTestService(t, Deps{})
	ctx := context.Background()
	note := "still counting"
	id, err := svc.Create(ctx, operator, CreateInput{Note: "initial"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(ctx, operator, id, UpdateInput{Note: &note, Status: status(models.ImportWaiting)})
	if !errors.Is(err, receipts.ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}

	d := mustGet(t, svc, id)
	r := d.Receipt
	if r.Status != models.ImportDraft || r.Quantity != 0 || r.TotalProduct != 0 || !r.TotalAmount.IsZero() || len(r.ChangeLogs) != 0 {
		t.Fatalf("receipt changed after failed transition: %+v", r)
	}
	if r.Note != "initial" {
		t.Fatalf("header update must roll back with the transition, note=%q", r.Note)
	}
}

func TestUpdateReplacesItemsBeforeWaiting(t *testing.T) {
	svc, db := newTestService(t, Deps{})
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1})
	p2 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 2})
	ctx := context.Background()
	id, err := svc.Create(ctx, operator, CreateInput{Items: []receipts.ItemInput{item(p1, 1, 9, 9)}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(ctx, operator, id, UpdateInput{
		Status: status(models.ImportWaiting),
		Items:  []receipts.ItemInput{item(p2, 2, 3, 20)},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	d := mustGet(t, svc, id)
	if len(d.Items) != 1 || d.Items[0].ProductCode != 2 {
		t.Fatalf("items not replaced: %+v", d.Items)
	}
	if d.Receipt.Quantity != 3 || d.Receipt.TotalProduct != 1 || !d.Receipt.TotalAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("totals not computed from replacement items: %+v", d.Receipt)
	}
}

func TestCompletedNotifiesAfterCommit(t *testing.T) {
	n := &recordingNotifier{}
	svc, db := newTestService(t, Deps{Notifier: n})
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1})
	ctx := context.Background()
	id, err := svc.Create(ctx, operator, CreateInput{Status: models.ImportWaiting, Items: []receipts.ItemInput{item(p1, 1, 1, 1)}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, operator, id, UpdateInput{Status: status(models.ImportCompleted)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].ReferenceID != id.String() {
		t.Fatalf("unexpected notifications %+v", n.sent)
	}
}

func TestNotificationFailureDoesNotFailUpdate(t *testing.T) {
	n := &recordingNotifier{err: errors.New("queue down")}
	svc, db := newTestService(t, Deps{Notifier: n})
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1})
	ctx := context.Background()
	id, err := svc.Create(ctx, operator, CreateInput{Status: models.ImportWaiting, Items: []receipts.ItemInput{item(p1, 1, 1, 1)}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, operator, id, UpdateInput{Status: status(models.ImportCompleted)}); err != nil {
		t.Fatalf("update must succeed when delivery fails: %v", err)
	}
	if got := mustGet(t, svc, id).Receipt.Status; got != models.ImportCompleted {
		t.Fatalf("expected COMPLETED, got %s", got)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t, Deps{})
	_, err := svc.Create(context.Background(), operator, CreateInput{Status: models.ImportCompleted})
	var verr *receipts.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), operator, CreateInput{Status: models.ImportWaiting}); !errors.Is(err, receipts.ErrNoItems) {
		t.Fatalf("expected ErrNoItems for empty WAITING receipt, got %v", err)
	}
}

func TestDeleteRemovesReceiptAndItems(t *testing.T) {
	svc, db := newTestService(t, Deps{})
	ctx := context.Background()
	inputs := make([]receipts.ItemInput, 0, 3)
	for code := int64(1); code <= 3; code++ {
		inputs = append(inputs, item(sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: code}), code, 1, 1))
	}
	id, err := svc.Create(ctx, operator, CreateInput{Items: inputs})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ids, err := svc.Delete(ctx, operator, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("unexpected deleted ids %v", ids)
	}
	if n := sqlitetest.Count(t, db, `SELECT COUNT(*) FROM receipt_imports`); n != 0 {
		t.Fatalf("expected 0 receipts, got %d", n)
	}
	if n := sqlitetest.Count(t, db, `SELECT COUNT(*) FROM receipt_items`); n != 0 {
		t.Fatalf("expected 0 items, got %d", n)
	}
	if _, err := svc.Delete(ctx, operator, id); !errors.Is(err, receipts.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteRollsBackWhenItemDeleteFails(t *testing.T) {
	svc, db := newTestService(t, Deps{})
	ctx := context.Background()
	inputs := make([]receipts.ItemInput, 0, 3)
	for code := int64(1); code <= 3; code++ {
		inputs = append(inputs, item(sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: code}), code, 1, 1))
	}
	id, err := svc.Create(ctx, operator, CreateInput{Items: inputs})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `CREATE TRIGGER fail_item_delete BEFORE DELETE ON receipt_items BEGIN SELECT RAISE(ABORT, 'boom'); END`)
		return err
	})
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := svc.Delete(ctx, operator, id); err == nil {
		t.Fatalf("expected delete to fail")
	}
	if n := sqlitetest.Count(t, db, `SELECT COUNT(*) FROM receipt_imports WHERE id = ?`, id.String()); n != 1 {
		t.Fatalf("receipt must survive rollback, got %d", n)
	}
	if n := sqlitetest.Count(t, db, `SELECT COUNT(*) FROM receipt_items WHERE receipt_id = ?`, id.String()); n != 3 {
		t.Fatalf("items must survive rollback, got %d", n)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, _ := newTestService(t, Deps{})
	ctx := context.Background()
	for _, note := range []string{"weekly milk", "weekly bread", "supplier return"} {
		if _, err := svc.Create(ctx, operator, CreateInput{Note: note}); err != nil {
			t.Fatalf("create %q: %v", note, err)
		}
	}

	res, err := svc.List(ctx, Filter{Keyword: "weekly", Page: pagination.New(1, 1)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Receipts) != 1 || res.Metadata.TotalItems != 2 || res.Metadata.TotalPages != 2 || !res.Metadata.HasNext {
		t.Fatalf("unexpected page %+v", res.Metadata)
	}

	res, err = svc.List(ctx, Filter{Status: models.ImportWaiting})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(res.Receipts) != 0 || res.Metadata.Limit != pagination.DefaultLimit {
		t.Fatalf("unexpected status filter result %+v", res)
	}
}

func TestGetByNumber(t *testing.T) {
	svc, _ := newTestService(t, Deps{})
	ctx := context.Background()
	id, err := svc.Create(ctx, operator, CreateInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	number := mustGet(t, svc, id).Receipt.ReceiptNumber

	d, err := svc.GetByNumber(ctx, number)
	if err != nil || d.Receipt.ID != id {
		t.Fatalf("get by number: %+v, %v", d.Receipt, err)
	}
	if _, err := svc.GetByNumber(ctx, "NH0000000000"); !errors.Is(err, receipts.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompletedTotalsByDayZeroFills(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := day1
	svc, db := newTestService(t, Deps{Audit: audit.NewServiceWithClock(func() time.Time { return clock })})
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1})
	p2 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 2})
	ctx := context.Background()

	complete := func(items ...receipts.ItemInput) {
		t.Helper()
		id, err := svc.Create(ctx, operator, CreateInput{Status: models.ImportWaiting, Items: items})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.Update(ctx, operator, id, UpdateInput{Status: status(models.ImportCompleted)}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	complete(item(p1, 1, 4, 1), item(p2, 2, 1, 1))
	if _, err := svc.Create(ctx, operator, CreateInput{Items: []receipts.ItemInput{item(p1, 1, 1, 1)}}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	clock = day1.AddDate(0, 0, 2)
	complete(item(p1, 1, 1, 1))

	got, err := svc.CompletedTotalsByDay(ctx, day1, day1.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	want := []DayTotal{{X: "2026-03-01", Y: 2}, {X: "2026-03-02", Y: 0}, {X: "2026-03-03", Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: want %+v, got %+v", i, want[i], got[i])
		}
	}

	if _, err := svc.CompletedTotalsByDay(ctx, day1, day1.AddDate(0, 0, -1)); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
