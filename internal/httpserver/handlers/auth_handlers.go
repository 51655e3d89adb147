package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockroom/internal/auth"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(st *store.Store, tokens *auth.Tokens, sessions auth.SessionStore, ttl time.Duration, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decode(w, r, &req) {
			return
		}
		u, err := st.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		sess, err := sessions.Create(r.Context(), u.Username, ttl)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		tok, err := tokens.Sign(u.Username, []string{string(u.Role)}, sess.JTI, ttl)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		if _, err := st.AppendAudit(r.Context(), store.AuditInput{
			Username: u.Username, Action: "LOGIN", Module: "auth", RecordKey: u.Username, IP: clientIP(r),
		}); err != nil {
			lg.Warnw("audit append failed", "action", "LOGIN", "error", err)
		}
		respondJSON(w, map[string]any{"token": tok, "expires_at": sess.ExpiresAt, "user": u})
	}
}

func Logout(sessions auth.SessionStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Revoke(r.Context(), auth.FromContext(r.Context()).JWTID); err != nil {
			respondError(w, lg, err)
			return
		}
		respondMessage(w, "logged out")
	}
}

func Me(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := st.GetUser(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func ListUsers(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := st.ListUsers(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, users)
	}
}

func CreateUser(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.UserInput
		if !decode(w, r, &req) {
			return
		}
		u, err := st.CreateUser(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "users", u.Username, map[string]models.Role{"role": u.Role})
		respondJSON(w, u)
	}
}

// UpdateUser ends the user's sessions when the change affects what their
// tokens grant, so a deactivated or demoted user must sign in again.
func UpdateUser(st *store.Store, sessions auth.SessionStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := urlParam(r, "username")
		var req store.UserPatch
		if !decode(w, r, &req) {
			return
		}
		u, err := st.UpdateUser(r.Context(), username, req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if req.Active != nil || req.Role != nil || req.Password != nil {
			if err := sessions.RevokeUser(r.Context(), u.Username); err != nil {
				respondError(w, lg, err)
				return
			}
		}
		audit(r, st, lg, "UPDATE", "users", u.Username, map[string]any{"role": u.Role, "active": u.Active})
		respondJSON(w, u)
	}
}
