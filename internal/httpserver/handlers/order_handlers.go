package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"stockroom/internal/auth"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

func ListOrders(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		orders, err := st.ListOrders(r.Context(), store.OrderFilter{
			Status:       models.OrderStatus(q.Get("status")),
			SupplierCode: q.Get("supplier"),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, orders)
	}
}

func GetOrder(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := st.GetOrder(r.Context(), urlParam(r, "no"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, o)
	}
}

func CreateOrder(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req store.OrderInput
		if !decode(w, r, &req) {
			return
		}
		if req.CreatedBy == "" {
			req.CreatedBy = auth.Subject(r.Context())
		}
		o, err := st.CreateOrder(r.Context(), req)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "CREATE", "orders", o.OrderNo, map[string]any{"supplier": o.SupplierCode, "total": o.TotalAmount})
		respondJSON(w, o)
	}
}

type orderStatusReq struct {
	Status   models.OrderStatus `json:"status"`
	Approver string             `json:"approver"`
}

func UpdateOrderStatus(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		no := urlParam(r, "no")
		var req orderStatusReq
		if !decode(w, r, &req) {
			return
		}
		if req.Status == models.OrderApproved && req.Approver == "" {
			req.Approver = auth.Subject(r.Context())
		}
		o, err := st.UpdateOrderStatus(r.Context(), no, req.Status, req.Approver)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r, st, lg, "STATUS", "orders", no, map[string]models.OrderStatus{"status": o.Status})
		respondJSON(w, o)
	}
}
