package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stockroom/internal/auth"
	"stockroom/internal/store"
)

func ListLocations(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locs, err := st.ListLocations(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, locs)
	}
}

func CreateLocation(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.LocationInput
		if !decode(w, r, &req) {
			return
		}
		loc, err := st.CreateLocation(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "locations", loc.Code, loc)
		respondJSON(w, loc)
	}
}

func DeleteLocation(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := urlParam(r, "code")
		ok, err := st.DeleteLocation(r.Context(), code)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !ok {
			http.Error(w, "location not found", http.StatusNotFound)
			return
		}
		audit(r, st, lg, "DELETE", "locations", code, nil)
		respondMessage(w, "location deleted")
	}
}

func ListStockCounts(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := st.ListStockCounts(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, counts)
	}
}

func CreateStockCount(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.StockCountInput
		if !decode(w, r, &req) {
			return
		}
		if req.CreatedBy == "" {
			req.CreatedBy = auth.Subject(r.Context())
		}
		c, err := st.CreateStockCount(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "stock_counts", c.CountNo, c)
		respondJSON(w, c)
	}
}

func CompleteStockCount(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		no := urlParam(r, "no")
		c, err := st.CompleteStockCount(r.Context(), no, auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "COMPLETE", "stock_counts", no, nil)
		respondJSON(w, c)
	}
}
