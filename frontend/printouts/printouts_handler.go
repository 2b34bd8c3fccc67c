package printouts

import (
	"net/http"
	"strconv"
	"time"

	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	"stockreceipter/frontend/shared/respond"
)

// ImportReceiptPDFHandler serves the printable import receipt.
func ImportReceiptPDFHandler(svc *importreceipt.Service) http.HandlerFunc {
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
		pdf, err := renderImportReceiptPDF(d, time.Now())
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "inline; filename="+d.Receipt.ReceiptNumber+".pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		_, _ = w.Write(pdf)
	}
}
