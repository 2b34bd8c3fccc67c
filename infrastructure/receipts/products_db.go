package receipts

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"stockreceipter/models"
)

var digits = regexp.MustCompile(`[0-9]+`)

// FormatProductCode renders the display code, e.g. 12 -> NK00012.
func FormatProductCode(code int64) string {
	return fmt.Sprintf("NK%05d", code)
}

// ParseProductCode extracts the first run of digits, so "NK00012" and "12"
// both yield 12.
func ParseProductCode(s string) (int64, error) {
	m := digits.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("no digits found in %q", s)
	}
	return strconv.ParseInt(m, 10, 64)
}

// ResolveProduct finds a product by UUID or by display/numeric code.
func ResolveProduct(ctx context.Context, tx bun.IDB, identifier string) (models.Product, error) {
	var p models.Product
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return p, NotFound("product")
	}

	q := tx.NewSelect().Model(&p).Limit(1)
	if id, err := uuid.Parse(identifier); err == nil {
		q = q.Where("id = ?", id)
	} else {
		code, err := ParseProductCode(identifier)
		if err != nil {
			return p, fmt.Errorf("product %q: %w", identifier, ErrNotFound)
		}
		q = q.Where("product_code = ?", code)
	}
	if err := q.Scan(ctx); err != nil {
		return p, ScanNotFound(err, "product")
	}
	return p, nil
}
