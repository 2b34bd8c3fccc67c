package products

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/infrastructure/sqlite"
)

// Stock on hand is only written by the ledger, so a re-import never
// touches inventory of an existing product.
const upsertProductSQL = `
INSERT INTO products (id, product_code, product_name, cost_price, selling_price, inventory, unit, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(product_code) DO UPDATE SET
  product_name = excluded.product_name,
  cost_price = excluded.cost_price,
  selling_price = excluded.selling_price,
  unit = excluded.unit,
  updated_at = CURRENT_TIMESTAMP`

var csvColumns = []string{"product_code", "product_name", "cost_price", "selling_price", "inventory", "unit"}

type productRow struct {
	code         int64
	name         string
	costPrice    decimal.Decimal
	sellingPrice decimal.Decimal
	inventory    int64
	unit         string
}

// ImportCSV upserts catalogue rows keyed by product code. The header must
// start with product_code,product_name; the remaining columns are optional.
// Bad rows are counted and skipped.
func ImportCSV(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID uuid.UUID, reader io.Reader) (ImportSummary, error) {
	summary := ImportSummary{}
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return summary, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || len(header) > len(csvColumns) {
		return summary, &receipts.ValidationError{Err: fmt.Errorf("invalid CSV header; expected %s", strings.Join(csvColumns, ","))}
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), csvColumns[i]) {
			return summary, &receipts.ValidationError{Err: fmt.Errorf("invalid CSV header; expected %s", strings.Join(csvColumns, ","))}
		}
	}

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				summary.Errors++
				continue
			}
			row, ok := parseRow(record)
			if !ok {
				summary.Errors++
				continue
			}

			var exists int
			if err := tx.NewRaw("SELECT COUNT(1) FROM products WHERE product_code = ?", row.code).Scan(ctx, &exists); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, upsertProductSQL,
				uuid.New(), row.code, row.name, row.costPrice, row.sellingPrice, row.inventory, row.unit); err != nil {
				summary.Errors++
				continue
			}
			if exists > 0 {
				summary.Updated++
			} else {
				summary.Inserted++
			}
		}

		after := map[string]any{"inserted": summary.Inserted, "updated": summary.Updated, "errors": summary.Errors}
		return auditSvc.Write(ctx, tx, userID, "product.import", "products", "csv", nil, after)
	})
	return summary, err
}

func parseRow(record []string) (productRow, bool) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var row productRow
	code, err := receipts.ParseProductCode(field(0))
	if err != nil || code <= 0 {
		return row, false
	}
	row.code = code
	row.name = field(1)
	if row.name == "" {
		return row, false
	}
	row.costPrice = decimal.Zero
	if v := field(2); v != "" {
		if row.costPrice, err = decimal.NewFromString(v); err != nil || row.costPrice.IsNegative() {
			return row, false
		}
	}
	row.sellingPrice = row.costPrice
	if v := field(3); v != "" {
		if row.sellingPrice, err = decimal.NewFromString(v); err != nil || row.sellingPrice.IsNegative() {
			return row, false
		}
	}
	if v := field(4); v != "" {
		if row.inventory, err = strconv.ParseInt(v, 10, 64); err != nil || row.inventory < 0 {
			return row, false
		}
	}
	row.unit = field(5)
	return row, true
}

// ListProducts pages the catalogue ordered by product code. keyword matches
// the name or the numeric code.
func ListProducts(ctx context.Context, db *sqlite.DB, keyword string, page pagination.Page) (ListResult, error) {
	var out ListResult
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		where := ""
		args := make([]any, 0, 2)
		if kw := strings.TrimSpace(keyword); kw != "" {
			where = " WHERE product_name LIKE ? OR CAST(product_code AS TEXT) = ?"
			args = append(args, "%"+kw+"%", kw)
			if code, err := receipts.ParseProductCode(kw); err == nil {
				args[1] = strconv.FormatInt(code, 10)
			}
		}

		var total int
		if err := tx.NewRaw(`SELECT COUNT(*) FROM products`+where, args...).Scan(ctx, &total); err != nil {
			return err
		}

		rows := make([]ProductRecord, 0)
		q := `
SELECT id, product_code, product_name, cost_price, inventory, COALESCE(unit, '') AS unit,
       strftime('%d/%m/%Y %H:%M', updated_at) AS updated_at
FROM products` + where + `
ORDER BY product_code ASC
LIMIT ? OFFSET ?`
		if err := tx.NewRaw(q, append(args, page.Limit, page.Offset)...).Scan(ctx, &rows); err != nil {
			return err
		}
		for i := range rows {
			rows[i].Code = receipts.FormatProductCode(rows[i].ProductCode)
		}
		out = ListResult{Products: rows, Metadata: page.Metadata(total)}
		return nil
	})
	return out, err
}
