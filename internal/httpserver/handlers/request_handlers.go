package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stockroom/internal/auth"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

func ListRequests(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		reqs, err := st.ListRequests(r.Context(), store.RequestFilter{
			Status:     models.RequestStatus(q.Get("status")),
			Department: q.Get("department"),
			Requester:  q.Get("requester"),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, reqs)
	}
}

func PendingRequests(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqs, err := st.ListPendingRequests(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, reqs)
	}
}

func GetRequest(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := st.GetRequest(r.Context(), urlParam(r, "no"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, req)
	}
}

func CreateRequest(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.RequestInput
		if !decode(w, r, &in) {
			return
		}
		if in.Requester == "" {
			in.Requester = auth.Subject(r.Context())
		}
		req, err := st.CreateRequest(r.Context(), in)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "requests", req.RequestNo, req)
		respondJSON(w, req)
	}
}

type decisionReq struct {
	Reason string `json:"reason"`
}

func ApproveRequest(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		no := urlParam(r, "no")
		req, err := st.ApproveRequest(r.Context(), no, auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "APPROVE", "requests", no, nil)
		respondJSON(w, req)
	}
}

func RejectRequest(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		no := urlParam(r, "no")
		var body decisionReq
		if !decode(w, r, &body) {
			return
		}
		req, err := st.RejectRequest(r.Context(), no, auth.Subject(r.Context()), body.Reason)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "REJECT", "requests", no, body)
		respondJSON(w, req)
	}
}

func CompleteRequest(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		no := urlParam(r, "no")
		req, err := st.CompleteRequest(r.Context(), no)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "COMPLETE", "requests", no, nil)
		respondJSON(w, req)
	}
}
