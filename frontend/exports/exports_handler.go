package exports

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	checkreceipt "stockreceipter/frontend/receipts/checkReceipt"
	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/frontend/shared/respond"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/sqlite"
)

// ImportItemsCSVHandler streams the items of an import receipt as CSV.
func ImportItemsCSVHandler(db *sqlite.DB, svc *importreceipt.Service, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ParseID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		d, err := svc.Get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := writeImportItemsCSV(&buf, d); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename(d.Receipt.ReceiptNumber, "csv"))
		_, _ = w.Write(buf.Bytes())

		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		if err := recordExportRun(r.Context(), db, auditSvc, actor.ID, "import_items_csv", id); err != nil {
			slog.Error("record export run failed", slog.String("type", "import_items_csv"), slog.Any("err", err))
		}
	}
}

// CheckReportXLSXHandler renders the discrepancy report of a check receipt.
func CheckReportXLSXHandler(db *sqlite.DB, svc *checkreceipt.Service, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ParseID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		d, err := svc.Get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := writeCheckReportXLSX(&buf, d); err != nil {
			respond.Error(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename(d.Receipt.ReceiptNumber, "xlsx"))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = w.Write(buf.Bytes())

		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		if err := recordExportRun(r.Context(), db, auditSvc, actor.ID, "check_report_xlsx", id); err != nil {
			slog.Error("record export run failed", slog.String("type", "check_report_xlsx"), slog.Any("err", err))
		}
	}
}
