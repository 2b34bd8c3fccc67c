package importreceipt

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/frontend/shared/respond"
	"stockreceipter/infrastructure/pagination"
	"stockreceipter/models"
)

// CreateCommandHandler creates an import receipt from a JSON body.
func CreateCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		var in CreateInput
		if err := respond.Decode(r, &in); err != nil {
			respond.Error(w, r, err)
			return
		}
		id, err := svc.Create(r.Context(), actor, in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// UpdateCommandHandler applies a partial update.
func UpdateCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		id, err := respond.ParseID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var in UpdateInput
		if err := respond.Decode(r, &in); err != nil {
			respond.Error(w, r, err)
			return
		}
		if _, err := svc.Update(r.Context(), actor, id, in); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{"id": id})
	}
}

func DeleteCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		id, err := respond.ParseID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		ids, err := svc.Delete(r.Context(), actor, id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{"ids": ids})
	}
}

// QuickScanCommandHandler records one barcode scan for the caller.
func QuickScanCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		var in ScanInput
		if err := respond.Decode(r, &in); err != nil {
			respond.Error(w, r, err)
			return
		}
		res, err := svc.QuickScan(r.Context(), actor, in.Code)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		respond.JSON(w, status, res)
	}
}

func GetQueryHandler(svc *Service) http.HandlerFunc {
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
		respond.JSON(w, http.StatusOK, d)
	}
}

func GetByNumberQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetByNumber(r.Context(), chi.URLParam(r, "receiptNumber"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, d)
	}
}

// ListQueryHandler supports keyword, status, importDate, page and limit.
func ListQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		importDate, err := respond.ParseDate(r, "importDate")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		res, err := svc.List(r.Context(), Filter{
			Keyword:    q.Get("keyword"),
			Status:     models.ImportStatus(q.Get("status")),
			ImportDate: importDate,
			Page:       pagination.FromQuery(q),
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// DailyStatsQueryHandler reports completed totals per day. The range
// defaults to the last seven days.
func DailyStatsQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := respond.ParseDate(r, "startDate")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		end, err := respond.ParseDate(r, "endDate")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		if end == nil {
			now := time.Now().UTC()
			end = &now
		}
		if start == nil {
			s := end.AddDate(0, 0, -6)
			start = &s
		}
		res, err := svc.CompletedTotalsByDay(r.Context(), *start, *end)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}
