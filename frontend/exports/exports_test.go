package exports

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	checkreceipt "stockreceipter/frontend/receipts/checkReceipt"
	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/models"
)

func TestWriteImportItemsCSV(t *testing.T) {
	t.Parallel()

	d := importreceipt.Detail{
		Receipt: models.ReceiptImport{
			ID:            uuid.New(),
			ReceiptNumber: "NH2603010930abcdef",
			Status:        models.ImportWaiting,
			Quantity:      7,
			TotalAmount:   decimal.NewFromInt(600),
		},
		Items: []importreceipt.ItemView{
			{ReceiptItem: models.ReceiptItem{ProductCode: 1, ProductName: "Rice", Quantity: 5, CostPrice: decimal.NewFromInt(100)}, Code: "NK00001"},
			{ReceiptItem: models.ReceiptItem{ProductCode: 2, ProductName: "Tea", Quantity: 2, CostPrice: decimal.NewFromInt(50)}, Code: "NK00002"},
		},
	}

	var buf bytes.Buffer
	if err := writeImportItemsCSV(&buf, d); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header, 2 items and total, got %d rows", len(records))
	}
	if records[1][2] != "NK00001" || records[1][7] != "500.00" {
		t.Fatalf("unexpected first item row %v", records[1])
	}
	if records[3][1] != "TOTAL" || records[3][4] != "7" || records[3][7] != "600.00" {
		t.Fatalf("unexpected total row %v", records[3])
	}
}

func TestWriteCheckReportXLSX(t *testing.T) {
	t.Parallel()

	items := []models.ReceiptItem{
		{ProductCode: 3, ProductName: "Soap", Inventory: 10, ActualInventory: 7, CostPrice: decimal.NewFromInt(20)},
	}
	views := make([]checkreceipt.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, checkreceipt.ItemView{ReceiptItem: it, Code: receipts.FormatProductCode(it.ProductCode), Discrepancy: receipts.ItemDiscrepancy(it)})
	}
	d := checkreceipt.Detail{
		Receipt: models.ReceiptCheck{ReceiptNumber: "KIEM2603010930abcdef"},
		Items:   views,
		Summary: receipts.SumDiscrepancies(items),
	}

	var buf bytes.Buffer
	if err := writeCheckReportXLSX(&buf, d); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "NK00003" || rows[1][4] != "-3" || rows[1][6] != "-60" {
		t.Fatalf("unexpected item row %v", rows[1])
	}
	if rows[2][0] != "TOTAL" || rows[2][4] != "-3" {
		t.Fatalf("unexpected total row %v", rows[2])
	}
}
