package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"stockroom/internal/store"
)

func ListSuppliers(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := store.SupplierFilter{Category: q.Get("category")}
		if v := q.Get("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "active must be true or false", http.StatusBadRequest)
				return
			}
			f.Active = &b
		}
		sps, err := st.ListSuppliers(r.Context(), f)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, sps)
	}
}

func GetSupplier(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sp, err := st.GetSupplier(r.Context(), urlParam(r, "code"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, sp)
	}
}

func CreateSupplier(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := store.NewSupplierInput()
		if !decode(w, r, &req) {
			return
		}
		sp, err := st.CreateSupplier(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "suppliers", sp.Code, sp)
		respondJSON(w, sp)
	}
}

func UpdateSupplier(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := urlParam(r, "code")
		req := store.NewSupplierInput()
		if !decode(w, r, &req) {
			return
		}
		sp, err := st.UpdateSupplier(r.Context(), code, req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "UPDATE", "suppliers", code, sp)
		respondJSON(w, sp)
	}
}

func DeleteSupplier(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := urlParam(r, "code")
		ok, err := st.DeleteSupplier(r.Context(), code)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !ok {
			http.Error(w, "supplier not found", http.StatusNotFound)
			return
		}
		audit(r, st, lg, "DELETE", "suppliers", code, nil)
		respondMessage(w, "supplier deleted")
	}
}
