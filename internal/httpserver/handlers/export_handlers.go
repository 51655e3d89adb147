package handlers

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockroom/internal/archive"
	"stockroom/internal/store"
	"stockroom/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func exportBytes(r *http.Request, st *store.Store) ([]byte, error) {
	f, err := workbook.Export(r.Context(), st)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportWorkbook streams every table as one workbook.
func ExportWorkbook(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := exportBytes(r, st)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		name := "stockroom-" + time.Now().UTC().Format("20060102") + ".xlsx"
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		_, _ = w.Write(b)
	}
}

// ArchiveWorkbook exports the workbook and stores it through ar.
func ArchiveWorkbook(st *store.Store, ar archive.Archiver, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := exportBytes(r, st)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		name := archive.SnapshotName(time.Now())
		if err := ar.Put(r.Context(), name, bytes.NewReader(b), int64(len(b))); err != nil {
			lg.Errorw("archive upload failed", "object", name, "error", err)
			http.Error(w, "archive upload failed", http.StatusBadGateway)
			return
		}
		audit(r, st, lg, "ARCHIVE", "export", name, nil)
		respondJSON(w, map[string]any{"object": name, "size": len(b)})
	}
}
