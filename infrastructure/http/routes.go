package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	exportspage "stockreceipter/frontend/exports"
	"stockreceipter/frontend/printouts"
	"stockreceipter/frontend/products"
	checkreceipt "stockreceipter/frontend/receipts/checkReceipt"
	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	"stockreceipter/infrastructure/rbac"
)

// allow grants a resource to every listed role.
func (s *Server) allow(code, method, path string, roles ...string) {
	for _, role := range roles {
		s.Rbac.Add(role, code, method, path)
	}
}

var everyone = []string{rbac.RoleStaff, rbac.RoleManager}

func (s *Server) RegisterImportRoutes(r chi.Router) {
	s.allow("IMPORT_LIST", http.MethodGet, "/api/receipts/imports", everyone...)
	r.Get("/receipts/imports", importreceipt.ListQueryHandler(s.Imports))

	s.allow("IMPORT_CREATE", http.MethodPost, "/api/receipts/imports", everyone...)
	r.Post("/receipts/imports", importreceipt.CreateCommandHandler(s.Imports))

	s.allow("IMPORT_QUICK_SCAN", http.MethodPost, "/api/receipts/imports/quick-scan", everyone...)
	r.Post("/receipts/imports/quick-scan", importreceipt.QuickScanCommandHandler(s.Imports))

	s.allow("IMPORT_DAILY_STATS", http.MethodGet, "/api/receipts/imports/stats/daily", everyone...)
	r.Get("/receipts/imports/stats/daily", importreceipt.DailyStatsQueryHandler(s.Imports))

	s.allow("IMPORT_BY_NUMBER", http.MethodGet, "/api/receipts/imports/by-number/*", everyone...)
	r.Get("/receipts/imports/by-number/{receiptNumber}", importreceipt.GetByNumberQueryHandler(s.Imports))

	// Covers the detail, print and export routes below.
	s.allow("IMPORT_VIEW", http.MethodGet, "/api/receipts/imports/*", everyone...)
	r.Get("/receipts/imports/{id}", importreceipt.GetQueryHandler(s.Imports))
	r.Get("/receipts/imports/{id}/print.pdf", printouts.ImportReceiptPDFHandler(s.Imports))
	r.Get("/receipts/imports/{id}/items.csv", exportspage.ImportItemsCSVHandler(s.DB, s.Imports, s.Audit))

	s.allow("IMPORT_UPDATE", http.MethodPatch, "/api/receipts/imports/*", everyone...)
	r.Patch("/receipts/imports/{id}", importreceipt.UpdateCommandHandler(s.Imports))

	s.allow("IMPORT_DELETE", http.MethodDelete, "/api/receipts/imports/*", rbac.RoleManager)
	r.Delete("/receipts/imports/{id}", importreceipt.DeleteCommandHandler(s.Imports))
}

func (s *Server) RegisterCheckRoutes(r chi.Router) {
	s.allow("CHECK_LIST", http.MethodGet, "/api/receipts/checks", everyone...)
	r.Get("/receipts/checks", checkreceipt.ListQueryHandler(s.Checks))

	s.allow("CHECK_CREATE", http.MethodPost, "/api/receipts/checks", everyone...)
	r.Post("/receipts/checks", checkreceipt.CreateCommandHandler(s.Checks))

	s.allow("CHECK_BY_NUMBER", http.MethodGet, "/api/receipts/checks/by-number/*", everyone...)
	r.Get("/receipts/checks/by-number/{receiptNumber}", checkreceipt.GetByNumberQueryHandler(s.Checks))

	s.allow("CHECK_VIEW", http.MethodGet, "/api/receipts/checks/*", everyone...)
	r.Get("/receipts/checks/{id}", checkreceipt.GetQueryHandler(s.Checks))
	r.Get("/receipts/checks/{id}/report.xlsx", exportspage.CheckReportXLSXHandler(s.DB, s.Checks, s.Audit))

	s.allow("CHECK_UPDATE", http.MethodPatch, "/api/receipts/checks/*", everyone...)
	r.Patch("/receipts/checks/{id}", checkreceipt.UpdateCommandHandler(s.Checks))

	s.allow("CHECK_COUNT_ITEM", http.MethodPost, "/api/receipts/checks/*/items/*/count", everyone...)
	r.Post("/receipts/checks/{id}/items/{productCode}/count", checkreceipt.CountItemCommandHandler(s.Checks))

	s.allow("CHECK_BALANCE", http.MethodPost, "/api/receipts/checks/*/balance", rbac.RoleManager)
	r.Post("/receipts/checks/{id}/balance", checkreceipt.BalanceCommandHandler(s.Checks))

	s.allow("CHECK_DELETE", http.MethodDelete, "/api/receipts/checks/*", rbac.RoleManager)
	r.Delete("/receipts/checks/{id}", checkreceipt.DeleteCommandHandler(s.Checks))
}

func (s *Server) RegisterProductRoutes(r chi.Router) {
	s.allow("PRODUCT_LIST", http.MethodGet, "/api/products", everyone...)
	r.Get("/products", products.ListQueryHandler(s.DB))

	s.allow("PRODUCT_IMPORT", http.MethodPost, "/api/products/import", rbac.RoleManager)
	r.Post("/products/import", products.ImportCommandHandler(s.DB, s.Audit))
}
