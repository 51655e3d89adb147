package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockroom/internal/store"
)

func BudgetSummary(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year := queryInt(r, "year", time.Now().Year())
		sum, err := st.GetBudgetSummary(r.Context(), year)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, sum)
	}
}

func CreateBudget(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.BudgetInput
		if !decode(w, r, &req) {
			return
		}
		b, err := st.CreateBudget(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "budget", b.Category, b)
		respondJSON(w, b)
	}
}

type spendReq struct {
	Year     int             `json:"year"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

func ApplySpend(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req spendReq
		if !decode(w, r, &req) {
			return
		}
		if req.Year == 0 {
			req.Year = time.Now().Year()
		}
		b, err := st.ApplySpend(r.Context(), req.Year, req.Category, req.Amount)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "SPEND", "budget", b.Category, req)
		respondJSON(w, b)
	}
}
