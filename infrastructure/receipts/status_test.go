package receipts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"stockreceipter/infrastructure/sqlite"
	"stockreceipter/infrastructure/sqlite/sqlitetest"
	"stockreceipter/models"
)

var at = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func seedImport(t *testing.T, db *sqlite.DB, status models.ImportStatus, items ...ItemInput) *models.ReceiptImport {
	t.Helper()
	r := &models.ReceiptImport{
		ID:            uuid.New(),
		ReceiptNumber: NewReceiptNumber(ImportPrefix, at),
		Status:        status,
		UserCreated:   uuid.New(),
		TotalAmount:   decimal.Zero,
		ChangeLogs:    models.ChangeLog{},
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(r).Exec(ctx); err != nil {
			return err
		}
		return InsertItems(ctx, tx, BuildItems(r.ID, items, at))
	})
	if err != nil {
		t.Fatalf("seed import: %v", err)
	}
	return r
}

func TestImportTransitionTable(t *testing.T) {
	cases := []struct {
		from, to models.ImportStatus
		wantErr  error
	}{
		{models.ImportDraft, models.ImportProcessing, nil},
		{models.ImportDraft, models.ImportCancelled, nil},
		{models.ImportProcessing, models.ImportDraft, nil},
		{models.ImportWaiting, models.ImportCompleted, nil},
		{models.ImportDraft, models.ImportCompleted, ErrInvalidTransition},
		{models.ImportProcessing, models.ImportCompleted, ErrInvalidTransition},
		{models.ImportCompleted, models.ImportDraft, ErrTerminalStatus},
		{models.ImportCancelled, models.ImportProcessing, ErrTerminalStatus},
		{models.ImportDraft, models.ImportStatus("SHIPPED"), ErrInvalidTransition},
	}
	for _, tc := range cases {
		r := &models.ReceiptImport{Status: tc.from}
		got, err := TransitionImport(context.Background(), nil, r, tc.to, "Lan", at)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.wantErr, err)
			}
			if got.Changed || len(got.ChangeLogs) != 0 {
				t.Fatalf("%s -> %s: failed transition must not log", tc.from, tc.to)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if got.Status != tc.to || len(got.ChangeLogs) != 1 {
			t.Fatalf("%s -> %s: got %+v", tc.from, tc.to, got)
		}
	}
}

func TestTransitionImportSameStatusIsNoop(t *testing.T) {
	prior := models.ChangeLog{{User: "Lan", OldStatus: "DRAFT", NewStatus: "PROCESSING", Timestamp: at}}
	r := &models.ReceiptImport{Status: models.ImportProcessing, ChangeLogs: prior}

	got, err := TransitionImport(context.Background(), nil, r, models.ImportProcessing, "Lan", at)
	if err != nil {
		t.Fatalf("noop: %v", err)
	}
	if got.Changed || len(got.ChangeLogs) != 1 {
		t.Fatalf("expected unchanged outcome, got %+v", got)
	}
}

func TestTransitionImportCompletedRequestsNotification(t *testing.T) {
	r := &models.ReceiptImport{Status: models.ImportWaiting}
	got, err := TransitionImport(context.Background(), nil, r, models.ImportCompleted, "Lan", at)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !got.Notify || got.Totals != nil {
		t.Fatalf("expected notify without recompute, got %+v", got)
	}
	if got.ChangeLogs[0] != (models.ChangeLogEntry{User: "Lan", OldStatus: "WAITING", NewStatus: "COMPLETED", Timestamp: at}) {
		t.Fatalf("unexpected change log entry %+v", got.ChangeLogs[0])
	}
}

func TestTransitionImportWaitingRecomputesTotals(t *testing.T) {
	db := sqlitetest.Open(t)
	p1 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 1, CostPrice: 100})
	p2 := sqlitetest.SeedProduct(t, db, sqlitetest.Product{Code: 2, CostPrice: 50})
	r := seedImport(t, db, models.ImportDraft,
		ItemInput{ProductID: p1, ProductCode: 1, ProductName: "A", Quantity: 5, CostPrice: decimal.NewFromInt(100)},
		ItemInput{ProductID: p2, ProductCode: 2, ProductName: "B", Quantity: 2, CostPrice: decimal.NewFromInt(50)},
	)

	var got ImportTransition
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		got, err = TransitionImport(ctx, tx, r, models.ImportWaiting, "Lan", at)
		return err
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got.Totals == nil {
		t.Fatalf("expected totals")
	}
	if got.Totals.Quantity != 7 || got.Totals.TotalProduct != 2 || !got.Totals.TotalAmount.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("unexpected totals %+v", got.Totals)
	}

	got.Apply(r)
	if r.Status != models.ImportWaiting || r.Quantity != 7 || len(r.ChangeLogs) != 1 {
		t.Fatalf("apply did not copy outcome: %+v", r)
	}
}

func TestTransitionImportWaitingWithoutItemsFails(t *testing.T) {
	db := sqlitetest.Open(t)
	r := seedImport(t, db, models.ImportProcessing)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := TransitionImport(ctx, tx, r, models.ImportWaiting, "Lan", at)
		return err
	})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if r.Status != models.ImportProcessing || len(r.ChangeLogs) != 0 {
		t.Fatalf("receipt mutated on failure: %+v", r)
	}
}

func TestTransitionCheckRejectsBalancedOnGenericPath(t *testing.T) {
	r := &models.ReceiptCheck{Status: models.CheckPending}
	if _, err := TransitionCheck(r, models.CheckBalanced, "Lan", at); !errors.Is(err, ErrBalanceOnly) {
		t.Fatalf("expected ErrBalanceOnly, got %v", err)
	}

	got, err := TransitionCheck(r, models.CheckChecking, "Lan", at)
	if err != nil {
		t.Fatalf("pending -> checking: %v", err)
	}
	if got.Status != models.CheckChecking || len(got.ChangeLogs) != 1 {
		t.Fatalf("unexpected outcome %+v", got)
	}
}

func TestBalanceCheck(t *testing.T) {
	r := &models.ReceiptCheck{Status: models.CheckChecking}
	got, err := BalanceCheck(r, "Lan", at)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Status != models.CheckBalanced || len(got.ChangeLogs) != 1 || len(got.ActivityLogs) != 1 {
		t.Fatalf("unexpected outcome %+v", got)
	}
	if got.ActivityLogs[0].Action != "Lan changed the status" {
		t.Fatalf("unexpected activity %q", got.ActivityLogs[0].Action)
	}

	got.Apply(r)
	if _, err := BalanceCheck(r, "Lan", at); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus on second balance, got %v", err)
	}
}
