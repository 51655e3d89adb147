package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stockroom/internal/models"
	"stockroom/internal/store"
)

func movementFilter(r *http.Request) (store.MovementFilter, bool) {
	q := r.URL.Query()
	f := store.MovementFilter{
		MaterialCode: strings.TrimSpace(q.Get("material")),
		Type:         models.MovementType(strings.ToUpper(q.Get("type"))),
	}
	var ok bool
	if f.From, ok = queryDate(r, "from", false); !ok {
		return f, false
	}
	if f.To, ok = queryDate(r, "to", true); !ok {
		return f, false
	}
	return f, true
}

func ListMovements(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := movementFilter(r)
		if !ok {
			http.Error(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		ms, err := st.ListMovements(r.Context(), f)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, ms)
	}
}

func CreateMovement(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.MovementInput
		if !decode(w, r, &req) {
			return
		}
		mv, err := st.CreateMovement(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, string(mv.Type), "movements", mv.MaterialCode, mv)
		respondJSON(w, mv)
	}
}
