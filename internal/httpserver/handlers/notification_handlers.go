package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stockroom/internal/auth"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

// recipient is the caller unless an admin asks for another user's feed.
func recipient(r *http.Request) string {
	claims := auth.FromContext(r.Context())
	if u := r.URL.Query().Get("username"); u != "" && claims.HasRole(string(models.RoleAdmin)) {
		return u
	}
	return claims.Subject
}

func ListNotifications(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ns, err := st.ListNotifications(r.Context(), recipient(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, ns)
	}
}

func UnreadCount(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := st.UnreadCount(r.Context(), recipient(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]int64{"count": n})
	}
}

// MarkRead lets admins mark any notification; others only their own and
// broadcasts.
func MarkRead(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		owner := claims.Subject
		if claims.HasRole(string(models.RoleAdmin)) {
			owner = ""
		}
		ok, err := st.MarkRead(r.Context(), urlParam(r, "id"), owner)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if !ok {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		respondMessage(w, "notification marked as read")
	}
}

func CreateNotification(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.NotificationInput
		if !decode(w, r, &req) {
			return
		}
		n, err := st.Notify(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "notifications", n.NotificationID, nil)
		respondJSON(w, n)
	}
}
