package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"stockroom/internal/importer"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

const maxUploadBytes = 32 << 20

func ListMaterials(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ms, err := st.ListMaterials(r.Context(), store.MaterialFilter{
			Category: models.Category(q.Get("category")),
			Status:   models.StockStatus(q.Get("status")),
			Search:   strings.TrimSpace(q.Get("search")),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, ms)
	}
}

func CriticalMaterials(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := st.CriticalMaterials(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, ms)
	}
}

func MaterialByBarcode(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := st.GetMaterialByBarcode(r.Context(), urlParam(r, "barcode"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, m)
	}
}

func GetMaterial(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := st.GetMaterial(r.Context(), urlParam(r, "code"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, m)
	}
}

func CreateMaterial(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := store.NewMaterialInput()
		if !decode(w, r, &req) {
			return
		}
		m, err := st.CreateMaterial(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "materials", m.Code, m)
		respondJSON(w, m)
	}
}

func UpdateMaterial(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := urlParam(r, "code")
		req := store.NewMaterialInput()
		if !decode(w, r, &req) {
			return
		}
		m, err := st.UpdateMaterial(r.Context(), code, req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "UPDATE", "materials", code, m)
		respondJSON(w, m)
	}
}

func DeleteMaterial(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := urlParam(r, "code")
		ok, err := st.DeleteMaterial(r.Context(), code)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !ok {
			http.Error(w, "material not found", http.StatusNotFound)
			return
		}
		audit(r, st, lg, "DELETE", "materials", code, nil)
		respondMessage(w, "material deleted")
	}
}

// ImportMaterials accepts a multipart upload in field "file".
func ImportMaterials(st *store.Store, im *importer.Importer, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if ext := strings.ToLower(filepath.Ext(hdr.Filename)); ext != ".xlsx" && ext != ".xlsm" {
			http.Error(w, "only .xlsx workbooks can be imported", http.StatusBadRequest)
			return
		}
		f, err := excelize.OpenReader(file)
		if err != nil {
			http.Error(w, "unreadable workbook: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		res, err := im.Import(r.Context(), f)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "IMPORT", "materials", hdr.Filename, res)
		respondJSON(w, res)
	}
}
