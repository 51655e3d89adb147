// Package analytics derives dashboards, reports and stock predictions from
// the store. Nothing here is cached; every call reads the tables afresh.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stockroom/internal/models"
	"stockroom/internal/store"
)

// Source is the read side of the store used by analytics.
type Source interface {
	ListMaterials(ctx context.Context, f store.MaterialFilter) ([]models.Material, error)
	ListMovements(ctx context.Context, f store.MovementFilter) ([]models.StockMovement, error)
	ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error)
	ListSuppliers(ctx context.Context, f store.SupplierFilter) ([]models.Supplier, error)
	ListPendingRequests(ctx context.Context) ([]models.Request, error)
	GetBudgetSummary(ctx context.Context, year int) (models.BudgetSummary, error)
}

type Service struct {
	src Source
	lg  *zap.SugaredLogger
	now func() time.Time
}

func New(src Source, lg *zap.SugaredLogger) *Service {
	return &Service{src: src, lg: lg, now: time.Now}
}

type BudgetStatus struct {
	Total     decimal.Decimal `json:"total"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
	Ratio     float64         `json:"ratio"`
}

type Dashboard struct {
	TotalMaterials  int             `json:"total_materials"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	CriticalCount   int             `json:"critical_count"`
	PendingRequests int             `json:"pending_requests"`
	PendingOrders   int             `json:"pending_orders"`
	Categories      map[string]int  `json:"categories"`
	MonthlySpend    decimal.Decimal `json:"monthly_spend"`
	Budget          BudgetStatus    `json:"budget"`
}

// Dashboard loads the tables it needs concurrently and aggregates them.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		materials []models.Material
		requests  []models.Request
		orders    []models.Order
		budget    models.BudgetSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		materials, err = s.src.ListMaterials(gctx, store.MaterialFilter{})
		return err
	})
	g.Go(func() (err error) {
		requests, err = s.src.ListPendingRequests(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.src.ListOrders(gctx, store.OrderFilter{})
		return err
	})
	g.Go(func() (err error) {
		budget, err = s.src.GetBudgetSummary(gctx, s.now().Year())
		return err
	})
	if err := g.Wait(); err != nil {
		s.lg.Errorw("dashboard load failed", "error", err)
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalMaterials:  len(materials),
		TotalStockValue: totalValue(materials),
		PendingRequests: len(requests),
		Categories:      categoryHistogram(materials),
		MonthlySpend:    budget.Used.Div(decimal.NewFromInt(12)),
		Budget: BudgetStatus{
			Total:     budget.Total,
			Used:      budget.Used,
			Remaining: budget.Remaining,
			Ratio:     budget.UsedRatio,
		},
	}
	for _, m := range materials {
		if m.Status == models.StockCritical {
			d.CriticalCount++
		}
	}
	for _, o := range orders {
		if o.Status == models.OrderPendingApproval || o.Status == models.OrderShipping {
			d.PendingOrders++
		}
	}
	return d, nil
}

func totalValue(materials []models.Material) decimal.Decimal {
	total := decimal.Zero
	for _, m := range materials {
		total = total.Add(m.StockValue())
	}
	return total
}

func categoryHistogram(materials []models.Material) map[string]int {
	out := map[string]int{}
	for _, m := range materials {
		out[string(m.Category)]++
	}
	return out
}
