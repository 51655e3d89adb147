package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

type MovementInput struct {
	MaterialCode string              `json:"material_code"`
	Type         models.MovementType `json:"type"`
	Quantity     float64             `json:"quantity"`
	Counterparty string              `json:"counterparty"`
	Description  string              `json:"description"`
	OrderRef     string              `json:"order_ref"`
	Approver     string              `json:"approver"`
}

func (in *MovementInput) normalize() error {
	in.MaterialCode = strings.TrimSpace(in.MaterialCode)
	in.Type = models.MovementType(strings.ToUpper(string(in.Type)))
	switch {
	case in.MaterialCode == "":
		return invalid("material_code", "required")
	case !in.Type.Valid():
		return invalid("type", fmt.Sprintf("unknown movement type %q", in.Type))
	case in.Quantity <= 0:
		return invalid("quantity", "must be greater than zero")
	}
	return nil
}

type MovementFilter struct {
	MaterialCode string
	Type         models.MovementType
	From, To     time.Time
}

// ListMovements returns movements newest first.
func (s *Store) ListMovements(ctx context.Context, f MovementFilter) ([]models.StockMovement, error) {
	q := s.read(ctx).Order("id desc")
	if f.MaterialCode != "" {
		q = q.Where("material_code = ?", f.MaterialCode)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at <= ?", f.To)
	}
	var out []models.StockMovement
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}

// CreateMovement appends the movement, adjusts the material's stock and
// raises a critical-stock notification when the new level is at or below
// the material's minimum. OUT movements never take stock below zero.
func (s *Store) CreateMovement(ctx context.Context, in MovementInput) (models.StockMovement, error) {
	var mv models.StockMovement
	if err := in.normalize(); err != nil {
		return mv, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		m, err := getMaterial(tx, in.MaterialCode)
		if err != nil {
			return fmt.Errorf("material %s: %w", in.MaterialCode, err)
		}
		now := s.now()
		mv = models.StockMovement{
			CreatedAt:    now,
			MaterialCode: m.Code,
			Type:         in.Type,
			Quantity:     in.Quantity,
			Counterparty: in.Counterparty,
			Description:  in.Description,
			OrderRef:     in.OrderRef,
			Approver:     in.Approver,
		}
		if err := tx.Create(&mv).Error; err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		stock := applyMovement(m.Stock, in.Type, in.Quantity)
		if err := tx.Model(&m).Updates(map[string]any{"stock": stock, "last_updated": now}).Error; err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		if stock <= m.MinLevel {
			_, err := s.notify(tx, NotificationInput{
				Recipient: s.opts.AdminRecipient,
				Type:      models.NotifyCriticalStock,
				Title:     fmt.Sprintf("%s is at critical stock level", m.Name),
				Message:   fmt.Sprintf("Current: %s, Minimum: %s", formatQty(stock), formatQty(m.MinLevel)),
				Link:      "/materials",
			})
			if err != nil {
				return fmt.Errorf("critical stock notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.lg.Warnw("movement rejected", "material", in.MaterialCode, "type", in.Type, "quantity", in.Quantity, "error", err)
		return models.StockMovement{}, err
	}
	return mv, nil
}

func applyMovement(stock float64, t models.MovementType, qty float64) float64 {
	if t == models.MovementIn {
		return stock + qty
	}
	if qty >= stock {
		return 0
	}
	return stock - qty
}
