package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"stockroom/internal/auth"
	"stockroom/internal/importer"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondMessage(w http.ResponseWriter, msg string) {
	respondJSON(w, map[string]string{"message": msg})
}

// respondError maps store and importer errors onto status codes. Anything
// unrecognised is logged and reported as 500.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	var verr *store.ValidationError
	var perr *importer.ParseError
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrDuplicateKey), errors.As(err, &verr), errors.As(err, &perr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		lg.Errorw("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func queryInt(r *http.Request, key string, def int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// queryDate parses a YYYY-MM-DD parameter. With endOfDay the result is the
// last instant of that day.
func queryDate(r *http.Request, key string, endOfDay bool) (time.Time, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// audit records a mutation made by the authenticated caller. Failures are
// logged and never fail the request.
func audit(r *http.Request, st *store.Store, lg *zap.SugaredLogger, action, module, key string, newValue any) {
	in := store.AuditInput{
		Username:  auth.Subject(r.Context()),
		Action:    action,
		Module:    module,
		RecordKey: key,
		IP:        clientIP(r),
	}
	if newValue != nil {
		b, _ := json.Marshal(newValue)
		in.NewValue = string(b)
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		in.Metadata = models.NewJSONB(map[string]string{"request_id": id})
	}
	if _, err := st.AppendAudit(r.Context(), in); err != nil {
		lg.Warnw("audit append failed", "action", action, "module", module, "key", key, "error", err)
	}
}

// clientIP strips the port from RemoteAddr; middleware.RealIP has already
// applied any forwarding headers.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
