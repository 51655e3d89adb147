package analytics

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"stockroom/internal/models"
	"stockroom/internal/store"
)

const unknownDepartment = "Unknown"

type InventoryReport struct {
	Materials     []models.Material `json:"materials"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	CriticalCount int               `json:"critical_count"`
	Categories    map[string]int    `json:"categories"`
}

// InventoryReport lists materials, optionally of one category. The category
// summary always covers the whole inventory.
func (s *Service) InventoryReport(ctx context.Context, category models.Category) (InventoryReport, error) {
	all, err := s.src.ListMaterials(ctx, store.MaterialFilter{})
	if err != nil {
		return InventoryReport{}, err
	}
	r := InventoryReport{Materials: []models.Material{}, Categories: categoryHistogram(all)}
	for _, m := range all {
		if category != "" && m.Category != category {
			continue
		}
		r.Materials = append(r.Materials, m)
		if m.Status == models.StockCritical {
			r.CriticalCount++
		}
	}
	r.TotalValue = totalValue(r.Materials)
	return r, nil
}

type MovementReport struct {
	Movements []models.StockMovement `json:"movements"`
	TotalIn   float64                `json:"total_in"`
	TotalOut  float64                `json:"total_out"`
	Net       float64                `json:"net"`
}

func (s *Service) MovementReport(ctx context.Context, f store.MovementFilter) (MovementReport, error) {
	mvs, err := s.src.ListMovements(ctx, f)
	if err != nil {
		return MovementReport{}, err
	}
	r := MovementReport{Movements: mvs}
	if r.Movements == nil {
		r.Movements = []models.StockMovement{}
	}
	for _, mv := range mvs {
		if mv.Type == models.MovementIn {
			r.TotalIn += mv.Quantity
		} else {
			r.TotalOut += mv.Quantity
		}
	}
	r.Net = r.TotalIn - r.TotalOut
	return r, nil
}

type DepartmentUsage struct {
	Department string  `json:"department"`
	Quantity   float64 `json:"quantity"`
	Items      int     `json:"items"`
}

// DepartmentConsumption groups OUT movements by who received them.
func (s *Service) DepartmentConsumption(ctx context.Context, department string) ([]DepartmentUsage, error) {
	outs, err := s.src.ListMovements(ctx, store.MovementFilter{Type: models.MovementOut})
	if err != nil {
		return nil, err
	}
	// oldest first, so departments keep the order they first appeared in
	var (
		order []string
		usage = map[string]*DepartmentUsage{}
		items = map[string]map[string]struct{}{}
	)
	for i := len(outs) - 1; i >= 0; i-- {
		mv := outs[i]
		dept := mv.Counterparty
		if dept == "" {
			dept = unknownDepartment
		}
		if department != "" && dept != department {
			continue
		}
		u, ok := usage[dept]
		if !ok {
			u = &DepartmentUsage{Department: dept}
			usage[dept] = u
			items[dept] = map[string]struct{}{}
			order = append(order, dept)
		}
		u.Quantity += mv.Quantity
		items[dept][mv.MaterialCode] = struct{}{}
	}
	out := make([]DepartmentUsage, 0, len(order))
	for _, dept := range order {
		u := *usage[dept]
		u.Items = len(items[dept])
		out = append(out, u)
	}
	return out, nil
}

type SupplierSummary struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Rating     float64         `json:"rating"`
	TotalValue decimal.Decimal `json:"total_value"`
	OrderCount int             `json:"order_count"`
}

// SupplierReport ranks suppliers by the value ordered from them.
func (s *Service) SupplierReport(ctx context.Context) ([]SupplierSummary, error) {
	suppliers, err := s.src.ListSuppliers(ctx, store.SupplierFilter{})
	if err != nil {
		return nil, err
	}
	orders, err := s.src.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]SupplierSummary, 0, len(suppliers))
	for _, sp := range suppliers {
		sum := SupplierSummary{Code: sp.Code, Name: sp.Name, Rating: sp.Rating, TotalValue: decimal.Zero}
		for _, o := range orders {
			if o.SupplierCode == sp.Code {
				sum.TotalValue = sum.TotalValue.Add(o.TotalAmount)
				sum.OrderCount++
			}
		}
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalValue.GreaterThan(out[j].TotalValue) })
	return out, nil
}

type MonthStat struct {
	Month string          `json:"month"`
	In    float64         `json:"in"`
	Out   float64         `json:"out"`
	Spend decimal.Decimal `json:"spend"`
}

// MonthlyStats totals movements and non-cancelled order value per calendar
// month, for the 12 most recent months that have any activity.
func (s *Service) MonthlyStats(ctx context.Context) ([]MonthStat, error) {
	months, err := s.monthly(ctx)
	if err != nil {
		return nil, err
	}
	return lastN(months, 12), nil
}

type Trends struct {
	Labels []string  `json:"labels"`
	In     []float64 `json:"in"`
	Out    []float64 `json:"out"`
}

// Trends is the movement history of the last six active months, laid out
// for charting.
func (s *Service) Trends(ctx context.Context) (Trends, error) {
	months, err := s.monthly(ctx)
	if err != nil {
		return Trends{}, err
	}
	t := Trends{Labels: []string{}, In: []float64{}, Out: []float64{}}
	for _, m := range lastN(months, 6) {
		t.Labels = append(t.Labels, m.Month)
		t.In = append(t.In, m.In)
		t.Out = append(t.Out, m.Out)
	}
	return t, nil
}

func (s *Service) monthly(ctx context.Context) ([]MonthStat, error) {
	mvs, err := s.src.ListMovements(ctx, store.MovementFilter{})
	if err != nil {
		return nil, err
	}
	orders, err := s.src.ListOrders(ctx, store.OrderFilter{})
	if err != nil {
		return nil, err
	}
	byMonth := map[string]*MonthStat{}
	get := func(key string) *MonthStat {
		m, ok := byMonth[key]
		if !ok {
			m = &MonthStat{Month: key, Spend: decimal.Zero}
			byMonth[key] = m
		}
		return m
	}
	for _, mv := range mvs {
		m := get(mv.CreatedAt.Format("2006-01"))
		if mv.Type == models.MovementIn {
			m.In += mv.Quantity
		} else {
			m.Out += mv.Quantity
		}
	}
	for _, o := range orders {
		if o.Status == models.OrderCancelled {
			continue
		}
		m := get(o.CreatedAt.Format("2006-01"))
		m.Spend = m.Spend.Add(o.TotalAmount)
	}
	out := make([]MonthStat, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func lastN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

type CategoryShare struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Value    decimal.Decimal `json:"value"`
	Percent  float64         `json:"percent"`
}

// CategoryAnalytics reports count and stock value per category, with the
// value's share of the whole inventory in percent.
func (s *Service) CategoryAnalytics(ctx context.Context) ([]CategoryShare, error) {
	materials, err := s.src.ListMaterials(ctx, store.MaterialFilter{})
	if err != nil {
		return nil, err
	}
	total := totalValue(materials)
	out := make([]CategoryShare, 0, len(models.Categories))
	for _, cat := range models.Categories {
		share := CategoryShare{Category: cat, Value: decimal.Zero}
		for _, m := range materials {
			if m.Category == cat {
				share.Count++
				share.Value = share.Value.Add(m.StockValue())
			}
		}
		if total.IsPositive() {
			share.Percent = share.Value.Mul(decimal.NewFromInt(100)).Div(total).InexactFloat64()
		}
		out = append(out, share)
	}
	return out, nil
}
