// Package sqlitetest opens migrated throwaway databases for package tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"stockreceipter/infrastructure/sqlite"
)

// Open returns a migrated database under t.TempDir, closed on cleanup.
func Open(t testing.TB) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.OpenDB(dbPath)
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
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// Product is a seed row for the products table.
type Product struct {
	ID        uuid.UUID
	Code      int64
	Name      string
	CostPrice int64
	Inventory int64
}

// SeedProduct inserts p, generating an ID when empty, and returns the ID.
func SeedProduct(t testing.TB, db *sqlite.DB, p Product) uuid.UUID {
	t.Helper()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Name == "" {
		p.Name = "Product"
	}
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, product_code, product_name, cost_price, selling_price, inventory) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.Code, p.Name, decimal.NewFromInt(p.CostPrice).String(), decimal.NewFromInt(p.CostPrice).String(), p.Inventory)
		return err
	})
	if err != nil {
		t.Fatalf("seed product %d: %v", p.Code, err)
	}
	return p.ID
}

// Stock reads the stored inventory of a product.
func Stock(t testing.TB, db *sqlite.DB, id uuid.UUID) int64 {
	t.Helper()
	var inv int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT inventory FROM products WHERE id = ?`, id.String()).Scan(ctx, &inv)
	})
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return inv
}

// Count runs a COUNT(*) query.
func Count(t testing.TB, db *sqlite.DB, query string, args ...any) int {
	t.Helper()
	var n int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(query, args...).Scan(ctx, &n)
	})
	if err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
