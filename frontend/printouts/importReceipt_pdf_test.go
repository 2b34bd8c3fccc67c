package printouts

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	"stockreceipter/models"
)

func TestRenderImportReceiptPDF_GeneratesPDF(t *testing.T) {
	t.Parallel()

	importDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d := importreceipt.Detail{
		Receipt: models.ReceiptImport{
			ReceiptNumber: "NH2603010930abcdef",
			Status:        models.ImportWaiting,
			Warehouse:     "Main",
			ImportDate:    &importDate,
			Quantity:      7,
			TotalProduct:  2,
			TotalAmount:   decimal.NewFromInt(600),
		},
		Items: []importreceipt.ItemView{
			{ReceiptItem: models.ReceiptItem{ProductName: "Rice", Quantity: 5, CostPrice: decimal.NewFromInt(100)}, Code: "NK00001"},
			{ReceiptItem: models.ReceiptItem{ProductName: "Tea", Quantity: 2, CostPrice: decimal.NewFromInt(50)}, Code: "NK00002"},
		},
	}

	pdf, err := renderImportReceiptPDF(d, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("renderImportReceiptPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected pdf header")
	}
}

func TestRenderImportReceiptPDF_PaginatesLongReceipts(t *testing.T) {
	t.Parallel()

	items := make([]importreceipt.ItemView, 0, rowsPerPage*2+1)
	for i := 0; i < rowsPerPage*2+1; i++ {
		items = append(items, importreceipt.ItemView{
			ReceiptItem: models.ReceiptItem{ProductName: fmt.Sprintf("A rather long product description number %d", i), Quantity: 1, CostPrice: decimal.NewFromInt(1)},
			Code:        fmt.Sprintf("NK%05d", i),
		})
	}
	d := importreceipt.Detail{Receipt: models.ReceiptImport{ReceiptNumber: "NH2603010930000001"}, Items: items}

	pdf, err := buildImportReceiptPDF(d, time.Now())
	if err != nil {
		t.Fatalf("buildImportReceiptPDF returned error: %v", err)
	}
	if got := pdf.PageCount(); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
}

func TestRenderImportReceiptPDF_RequiresNumber(t *testing.T) {
	t.Parallel()

	if _, err := renderImportReceiptPDF(importreceipt.Detail{}, time.Now()); err == nil {
		t.Fatalf("expected error for receipt without number")
	}
}
