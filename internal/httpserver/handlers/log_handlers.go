package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stockroom/internal/store"
)

// AuditLogs returns the newest entries first, filtered by module and user.
func AuditLogs(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		logs, err := st.ListAuditLogs(r.Context(), store.AuditFilter{
			Module:   q.Get("module"),
			Username: q.Get("user"),
			Limit:    queryInt(r, "limit", 100),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, logs)
	}
}
