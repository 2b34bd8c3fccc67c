package products

import (
	"net/http"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/frontend/shared/respond"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/sqlite"
)

const maxUploadBytes = 10 << 20

// ImportCommandHandler accepts a multipart "file" field holding the catalogue CSV.
func ImportCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid upload")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		summary, err := ImportCSV(r.Context(), db, auditSvc, actor.ID, file)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, summary)
	}
}

func ListQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := ListProducts(r.Context(), db, q.Get("keyword"), pagination.FromQuery(q))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}
