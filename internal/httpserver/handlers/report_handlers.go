package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"stockroom/internal/analytics"
	"stockroom/internal/models"
)

// compute serves any analytics call that takes no parameters.
func compute[T any](fn func(context.Context) (T, error), lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, v)
	}
}

func Dashboard(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return compute(an.Dashboard, lg)
}

func Predictions(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return compute(an.Predictions, lg)
}

func SupplierReport(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return compute(an.SupplierReport, lg)
}

func MonthlyStats(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return compute(an.MonthlyStats, lg)
}

func Trends(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return compute(an.Trends, lg)
}

func CategoryAnalytics(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return compute(an.CategoryAnalytics, lg)
}

func InventoryReport(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := an.InventoryReport(r.Context(), models.Category(r.URL.Query().Get("category")))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, rep)
	}
}

func MovementReport(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := movementFilter(r)
		if !ok {
			http.Error(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		rep, err := an.MovementReport(r.Context(), f)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, rep)
	}
}

func DepartmentReport(an *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := an.DepartmentConsumption(r.Context(), r.URL.Query().Get("department"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, rep)
	}
}
