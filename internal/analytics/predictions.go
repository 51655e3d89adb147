package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/store"
)

const (
	consumptionWindow = 30
	reorderFactor     = 1.2
)

type Prediction struct {
	MaterialCode     string          `json:"material_code"`
	MaterialName     string          `json:"material_name"`
	Stock            float64         `json:"stock"`
	DailyConsumption float64         `json:"daily_consumption"`
	DepletionDate    string          `json:"depletion_date"`
	DaysLeft         int             `json:"days_left"`
	SuggestedOrder   int             `json:"suggested_order"`
	Urgency          models.Priority `json:"urgency"`
}

// Predictions estimates when each material runs out. Daily consumption is
// the sum of the 30 most recent OUT movements divided by 30, however many
// movements there are. Materials without consumption are left out.
func (s *Service) Predictions(ctx context.Context) ([]Prediction, error) {
	materials, err := s.src.ListMaterials(ctx, store.MaterialFilter{})
	if err != nil {
		return nil, err
	}
	outs, err := s.src.ListMovements(ctx, store.MovementFilter{Type: models.MovementOut})
	if err != nil {
		return nil, err
	}

	// movements arrive newest first
	consumed := map[string]float64{}
	seen := map[string]int{}
	for _, mv := range outs {
		if seen[mv.MaterialCode] == consumptionWindow {
			continue
		}
		seen[mv.MaterialCode]++
		consumed[mv.MaterialCode] += mv.Quantity
	}

	now := s.now()
	out := []Prediction{}
	for _, m := range materials {
		daily := consumed[m.Code] / consumptionWindow
		if daily <= 0 {
			continue
		}
		days := m.Stock / daily
		out = append(out, Prediction{
			MaterialCode:     m.Code,
			MaterialName:     m.Name,
			Stock:            m.Stock,
			DailyConsumption: math.Round(daily*100) / 100,
			DepletionDate:    addDays(now, days).Format("2006-01-02"),
			DaysLeft:         int(days),
			SuggestedOrder:   max(0, int((m.MaxLevel-m.Stock)*reorderFactor)),
			Urgency:          urgency(days),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Urgency.Rank() < out[j].Urgency.Rank() })
	return out, nil
}

func addDays(t time.Time, days float64) time.Time {
	whole := math.Floor(days)
	return t.AddDate(0, 0, int(whole)).Add(time.Duration((days - whole) * float64(24*time.Hour)))
}

func urgency(days float64) models.Priority {
	switch {
	case days <= 7:
		return models.PriorityUrgent
	case days <= 14:
		return models.PriorityHigh
	case days <= 30:
		return models.PriorityNormal
	default:
		return models.PriorityLow
	}
}
