package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	checkreceipt "stockreceipter/frontend/receipts/checkReceipt"
	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/sqlite"
)

const reportSheet = "Discrepancies"

func writeImportItemsCSV(w io.Writer, d importreceipt.Detail) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"receipt_number", "status", "code", "product_name", "quantity", "cost_price", "discount", "line_amount"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, it := range d.Items {
		amount := it.CostPrice.Mul(decimal.NewFromInt(it.Quantity))
		record := []string{
			d.Receipt.ReceiptNumber,
			string(d.Receipt.Status),
			it.Code,
			it.ProductName,
			strconv.FormatInt(it.Quantity, 10),
			it.CostPrice.StringFixed(2),
			it.Discount.StringFixed(2),
			amount.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		d.Receipt.ReceiptNumber, "TOTAL", "", "",
		strconv.FormatInt(d.Receipt.Quantity, 10), "", "",
		d.Receipt.TotalAmount.StringFixed(2),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeCheckReportXLSX(w io.Writer, d checkreceipt.Detail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}

	header := []any{"Code", "Product", "System stock", "Counted stock", "Difference", "Cost price", "Value difference"}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return err
	}
	row := 2
	for _, it := range d.Items {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []any{
			it.Code,
			it.ProductName,
			it.Inventory,
			it.ActualInventory,
			it.Difference,
			it.CostPrice.InexactFloat64(),
			it.ValueDifference.InexactFloat64(),
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	total := []any{
		"TOTAL",
		d.Receipt.ReceiptNumber,
		d.Summary.SystemInventory,
		d.Summary.ActualInventory,
		d.Summary.TotalDifference,
		nil,
		d.Summary.TotalValueDifference.InexactFloat64(),
	}
	if err := f.SetSheetRow(reportSheet, cell, &total); err != nil {
		return err
	}
	if err := f.SetColWidth(reportSheet, "B", "B", 32); err != nil {
		return err
	}
	return f.Write(w)
}

// recordExportRun leaves an audit row for a downloaded report.
func recordExportRun(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID uuid.UUID, exportType string, receiptID uuid.UUID) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return auditSvc.Write(ctx, tx, userID, "export."+exportType, "export_run", receiptID.String(), nil,
			map[string]string{"type": exportType, "receipt_id": receiptID.String()})
	})
}

func exportFilename(number, ext string) string {
	return fmt.Sprintf("%s.%s", number, ext)
}
