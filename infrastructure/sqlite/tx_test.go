package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "migrations")
	if err := ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

const insertProduct = `INSERT INTO products (id, product_code, product_name, inventory) VALUES (?, ?, ?, 0)`

func countProducts(t *testing.T, db *DB, name string) int {
	t.Helper()
	var count int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM products WHERE product_name = ?`, name).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	return count
}

func TestWithWriteTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, insertProduct, "rollback-id", 1, "rollback-product"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got: %v", err)
	}
	if n := countProducts(t, db, "rollback-product"); n != 0 {
		t.Fatalf("expected rollback to remove insert, count=%d", n)
	}
}

func TestWithWriteTxCommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, insertProduct, "commit-id", 2, "commit-product")
		return err
	})
	if err != nil {
		t.Fatalf("write tx failed: %v", err)
	}
	if n := countProducts(t, db, "commit-product"); n != 1 {
		t.Fatalf("expected committed insert, count=%d", n)
	}
}

func TestWithReadTxRejectsWrite(t *testing.T) {
	db := openTestDB(t)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, insertProduct, "ro-id", 3, "read-only-product")
		return err
	})
	if n := countProducts(t, db, "read-only-product"); err == nil && n > 0 {
		t.Fatalf("expected write in read tx to be blocked; write succeeded")
	}
}

func TestWriteReturnsValueOnlyOnCommit(t *testing.T) {
	db := openTestDB(t)

	got, err := Write(context.Background(), db, func(ctx context.Context, tx bun.Tx) (string, error) {
		_, err := tx.ExecContext(ctx, insertProduct, "value-id", 4, "value-product")
		return "value-id", err
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got != "value-id" {
		t.Fatalf("expected value-id, got %q", got)
	}

	got, err = Write(context.Background(), db, func(ctx context.Context, tx bun.Tx) (string, error) {
		return "discarded", errors.New("fail")
	})
	if err == nil || got != "" {
		t.Fatalf("expected zero value and error, got %q, %v", got, err)
	}
}
