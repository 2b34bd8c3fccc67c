package checkreceipt

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	sessioncontext "stockreceipter/frontend/shared/context"
	"stockreceipter/frontend/shared/respond"
	"stockreceipter/infrastructure/pagination"
	"stockreceipter/infrastructure/receipts"
	"stockreceipter/models"
)

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

// BalanceCommandHandler accepts an optional body with the final counts.
func BalanceCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		id, err := respond.ParseID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var in BalanceInput
		if err := respond.Decode(r, &in); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(w, r, err)
			return
		}
		if err := svc.Balance(r.Context(), actor, id, in); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]any{"id": id, "status": models.CheckBalanced})
	}
}

// CountItemCommandHandler adds one to the counted stock of {productCode}.
func CountItemCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := sessioncontext.GetActorFromContext(r.Context())
		id, err := respond.ParseID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		code, err := receipts.ParseProductCode(chi.URLParam(r, "productCode"))
		if err != nil {
			respond.Fail(w, http.StatusUnprocessableEntity, "invalid product code")
			return
		}
		it, err := svc.CountItem(r.Context(), actor, id, code)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, it)
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

// ListQueryHandler supports keyword, status, date, startDate, endDate, page
// and limit.
func ListQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := Filter{
			Keyword: q.Get("keyword"),
			Status:  models.CheckStatus(q.Get("status")),
			Page:    pagination.FromQuery(q),
		}
		var err error
		for name, dst := range map[string]**time.Time{"date": &f.Date, "startDate": &f.StartDate, "endDate": &f.EndDate} {
			if *dst, err = respond.ParseDate(r, name); err != nil {
				respond.Error(w, r, err)
				return
			}
		}
		res, err := svc.List(r.Context(), f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}
